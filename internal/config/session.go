package config

import (
	"bytes"
	"sync"
	"time"

	"github.com/forgeapp/forge/pkg/logger"
)

// DefaultSessionSecret is only meant for local development.
const DefaultSessionSecret = "forge-development-secret"

var (
	jwtSecretMu sync.RWMutex
	// JWTSecret signs session cookies. Set SESSION_SECRET in production.
	JWTSecret = []byte(GetEnvOrDefault("SESSION_SECRET", DefaultSessionSecret))

	// SessionCookieName is the name of the session cookie
	SessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "forge_session")
)

// GetJWTSecret returns the current session signing secret in a thread-safe manner
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	return JWTSecret
}

// SetJWTSecret temporarily changes the signing secret and returns a function to restore it
// This is primarily used for testing
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := JWTSecret
	JWTSecret = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		JWTSecret = previous
		jwtSecretMu.Unlock()
	}
}

// WarnDefaultSessionSecret logs a warning when sessions are signed with the
// built-in development secret and reports whether it did.
func WarnDefaultSessionSecret() bool {
	if !bytes.Equal(GetJWTSecret(), []byte(DefaultSessionSecret)) {
		return false
	}
	logger.Warn(logger.CONFIG, "SESSION_SECRET not set - session cookies are signed with the development secret")
	return true
}

// GetSessionCookieName returns the configured session cookie name
func GetSessionCookieName() string {
	return SessionCookieName
}

// GetSessionLifetime is how long a browser session (and its cookie) stays valid.
func GetSessionLifetime() time.Duration {
	return parseEnvDuration("SESSION_LIFETIME", 30*24*time.Hour)
}

// GetSessionCookieSecure controls the Secure flag; disable for plain-http local development.
func GetSessionCookieSecure() bool {
	return parseEnvBool("SESSION_COOKIE_SECURE", true)
}
