package config

import (
	"net/netip"
	"time"

	"github.com/forgeapp/forge/pkg/logger"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
	// TrustedProxies may set X-Forwarded-For; other peers are keyed by address.
	TrustedProxies []netip.Prefix
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := parseEnvBool("RATELIMIT_ENABLED", false)

	configs := map[string]RateLimitConfig{
		"global": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_GLOBAL", 1000), // 1000 requests per minute globally
			Window:  time.Minute,
		},
		"generate": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_GENERATE", 30),
			Window:  time.Minute,
		},
		"describe": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_DESCRIBE", 10),
			Window:  time.Minute,
		},
		"follow_up": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_FOLLOW_UP", 60),
			Window:  time.Minute,
		},
		"websocket": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_WEBSOCKET", 30),
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		config.TrustedProxies = GetTrustedProxies()
		return config
	}

	logger.Warn(logger.CONFIG, "No rate limit config found for key: %s", key)
	return RateLimitConfig{Enabled: false}
}
