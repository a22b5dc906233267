package config

import (
	"net/netip"
	"strings"
	"time"

	"github.com/forgeapp/forge/pkg/logger"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":" + GetEnvOrDefault("PORT", "8080"),
		ReadHeaderTimeout: parseEnvDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   parseEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// ConversationConfig controls the periodic sweep of idle conversations.
type ConversationConfig struct {
	MaxAge          time.Duration
	CleanupInterval time.Duration
}

func GetConversationConfig() ConversationConfig {
	return ConversationConfig{
		MaxAge:          parseEnvDuration("CONVERSATION_MAX_AGE", 24*time.Hour),
		CleanupInterval: parseEnvDuration("CONVERSATION_CLEANUP_INTERVAL", 10*time.Minute),
	}
}

// GetAllowedOrigins returns the origins allowed to open WebSocket streams.
// Empty means any origin.
func GetAllowedOrigins() []string {
	return parseEnvList("ALLOWED_ORIGINS")
}

// GetTrustedProxies parses TRUSTED_PROXIES, a list of addresses or CIDR
// ranges whose X-Forwarded-For header is believed. Empty means none.
func GetTrustedProxies() []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range parseEnvList("TRUSTED_PROXIES") {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logger.Warn(logger.CONFIG, "Ignoring invalid trusted proxy range %q", entry)
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.Warn(logger.CONFIG, "Ignoring invalid trusted proxy address %q", entry)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}
