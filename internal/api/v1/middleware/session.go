package middleware

import (
	"context"
	"net/http"

	"github.com/forgeapp/forge/internal/services/session"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	sessionKey contextKey = "session"
)

// Session makes sure every request carries a browser session, issuing a
// cookie when needed, and stores the claims in the request context.
func Session(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionService.EnsureSession(w, r)
			if err != nil {
				log.Error().Err(err).Msg("Failed to establish session")
				httpext.JsonError(w, "Failed to establish session", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the claims stored by Session, or nil.
func SessionFromContext(ctx context.Context) *session.SessionClaims {
	claims, _ := ctx.Value(sessionKey).(*session.SessionClaims)
	return claims
}

// SessionID is SessionFromContext reduced to the id; empty without a session.
func SessionID(ctx context.Context) string {
	if claims := SessionFromContext(ctx); claims != nil {
		return claims.SessionID
	}
	return ""
}

// WithSession returns ctx carrying claims. Used by handlers outside the
// middleware chain and by tests.
func WithSession(ctx context.Context, claims *session.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey, claims)
}
