package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/infrastructure/redis"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims identify a browser. The session id namespaces the data the
// browser owns, such as its presets.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	claims    *SessionClaims
	expiresAt time.Time
}

func (e memorySession) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type Service struct {
	store    SessionStore
	lifetime time.Duration
}

func NewService(redisService *redis.Service) *Service {
	logger.Info(logger.SERVICE, "Initialising session service")

	var store SessionStore
	if redisService != nil {
		logger.Info(logger.SERVICE, "Using Redis for session storage")
		store = &RedisStore{redisService: redisService}
	} else {
		logger.Info(logger.SERVICE, "Using in-memory session storage")
		store = NewMemoryStore()
	}

	return NewServiceWithStore(store, config.GetSessionLifetime())
}

func NewServiceWithStore(store SessionStore, lifetime time.Duration) *Service {
	return &Service{store: store, lifetime: lifetime}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func sessionKey(sessionID string) string {
	return "Session:" + sessionID
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, sessionKey(sessionID), string(data), ttl)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := rs.redisService.Get(ctx, sessionKey(sessionID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, sessionKey(sessionID))
}

// Memory Store implementation
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := memorySession{claims: claims}
	if ttl > 0 {
		entry.expiresAt = ms.now().Add(ttl)
	} else if claims.ExpiresAt != nil {
		entry.expiresAt = claims.ExpiresAt.Time
	}
	ms.sessions[sessionID] = entry
	return nil
}

// Get drops the session if it has expired.
func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	if entry.expired(ms.now()) {
		delete(ms.sessions, sessionID)
		return nil, nil
	}
	return entry.claims, nil
}

// Sweep removes every expired session and returns how many were removed.
func (ms *MemoryStore) Sweep() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	removed := 0
	for id, entry := range ms.sessions {
		if entry.expired(now) {
			delete(ms.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions, expired ones included.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.sessions)
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// Sweep evicts expired sessions from stores that keep them in process.
// Redis expires keys on its own, so it reports zero there.
func (s *Service) Sweep() int {
	sweeper, ok := s.store.(interface{ Sweep() int })
	if !ok {
		return 0
	}
	removed := sweeper.Sweep()
	if removed > 0 {
		logger.Debug(logger.SERVICE, "Swept %d expired sessions", removed)
	}
	return removed
}

// CreateSession starts a new session and sets its cookie on w.
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter) (*SessionClaims, error) {
	now := time.Now()
	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
		SessionID: sessionID,
	}

	if err := s.store.Set(ctx, sessionID, claims, s.lifetime); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(s.lifetime),
	})

	logger.Debug(logger.SERVICE, "Created session %s", sessionID)
	return claims, nil
}

func (s *Service) parse(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, nil
}

// ValidateSession returns the claims of a valid, still-stored session
// cookie, or nil if there is none.
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	claims, err := s.parse(r)
	if err != nil || claims == nil {
		return nil, err
	}

	storedClaims, err := s.store.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if storedClaims == nil {
		return nil, nil
	}

	return claims, nil
}

// EnsureSession returns the request's session, starting a new one when the
// cookie is missing, invalid or expired.
func (s *Service) EnsureSession(w http.ResponseWriter, r *http.Request) (*SessionClaims, error) {
	claims, err := s.ValidateSession(r)
	if err != nil {
		logger.Debug(logger.SERVICE, "Discarding invalid session cookie: %v", err)
	}
	if claims != nil {
		return claims, nil
	}
	return s.CreateSession(r.Context(), w)
}

// ClearSession removes the session cookie and from storage
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.parse(r); err == nil && claims != nil {
		_ = s.store.Delete(r.Context(), claims.SessionID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
