package config

import (
	"net/netip"
	"testing"
	"time"
)

func TestGetProviderConfig(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg ProviderConfig)
	}{
		{
			name: "gateway key overrides every vendor",
			env: map[string]string{
				"AI_GATEWAY_API_KEY": "gw-key",
				"OPENAI_API_KEY":     "sk-openai",
				"ANTHROPIC_BASE_URL": "https://anthropic.internal",
			},
			check: func(t *testing.T, cfg ProviderConfig) {
				if !cfg.UsingGateway {
					t.Fatal("expected gateway to be in use")
				}
				for name, vendor := range map[string]VendorConfig{
					"anthropic": cfg.Anthropic,
					"openai":    cfg.OpenAI,
					"google":    cfg.Google,
					"groq":      cfg.Groq,
				} {
					if vendor.APIKey != "gw-key" {
						t.Errorf("%s: expected gateway key, got %q", name, vendor.APIKey)
					}
					if vendor.BaseURL != DefaultGatewayBaseURL {
						t.Errorf("%s: expected gateway URL, got %q", name, vendor.BaseURL)
					}
				}
			},
		},
		{
			name: "vendor keys and base URLs without gateway",
			env: map[string]string{
				"OPENAI_API_KEY":     "sk-openai",
				"OPENAI_BASE_URL":    "https://openai.internal/v1",
				"ANTHROPIC_API_KEY":  "sk-ant",
				"GROQ_API_KEY":       "gsk",
				"GEMINI_API_KEY":     "gem",
				"ANTHROPIC_BASE_URL": "",
			},
			check: func(t *testing.T, cfg ProviderConfig) {
				if cfg.UsingGateway {
					t.Fatal("gateway should not be in use")
				}
				if cfg.OpenAI.APIKey != "sk-openai" || cfg.OpenAI.BaseURL != "https://openai.internal/v1" {
					t.Errorf("unexpected openai config: %+v", cfg.OpenAI)
				}
				if cfg.Anthropic.BaseURL != DefaultAnthropicBaseURL {
					t.Errorf("expected default anthropic URL, got %q", cfg.Anthropic.BaseURL)
				}
				if cfg.Groq.BaseURL != DefaultGroqBaseURL {
					t.Errorf("expected default groq URL, got %q", cfg.Groq.BaseURL)
				}
				if cfg.Google.APIKey != "gem" {
					t.Errorf("expected gemini key, got %q", cfg.Google.APIKey)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"AI_GATEWAY_API_KEY", "AI_GATEWAY_BASE_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
				"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "GEMINI_API_KEY", "GEMINI_BASE_URL",
				"GROQ_API_KEY", "GROQ_BASE_URL",
			} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.check(t, GetProviderConfig())
		})
	}
}

func TestGetRateLimitConfig(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_FOLLOW_UP", "7")

	cfg := GetRateLimitConfig("follow_up")
	if !cfg.Enabled || cfg.MaxHits != 7 || cfg.Window != time.Minute {
		t.Errorf("unexpected follow_up config: %+v", cfg)
	}

	if GetRateLimitConfig("unknown").Enabled {
		t.Error("unknown keys must be disabled")
	}
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	if got := parseEnvInt("TEST_INT", 3); got != 3 {
		t.Errorf("parseEnvInt() = %d, want 3", got)
	}

	t.Setenv("TEST_DURATION", "90s")
	if got := parseEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("parseEnvDuration() = %s, want 90s", got)
	}

	t.Setenv("TEST_BOOL", "yes please")
	if got := parseEnvBool("TEST_BOOL", true); !got {
		t.Error("parseEnvBool() should fall back to the default on garbage")
	}
}

func TestGetGenerationConfig(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT", "")
	t.Setenv("STRICT_MODEL_CONFIG", "true")

	cfg := GetGenerationConfig()
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("expected default timeout, got %s", cfg.Timeout)
	}
	if !cfg.StrictModelConfig {
		t.Error("expected strict model config")
	}
}

func TestGetAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	if origins := GetAllowedOrigins(); origins != nil {
		t.Errorf("expected no origin restriction, got %v", origins)
	}

	t.Setenv("ALLOWED_ORIGINS", "https://forge.dev, http://localhost:3000,,")
	origins := GetAllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://forge.dev" || origins[1] != "http://localhost:3000" {
		t.Errorf("unexpected origins %v", origins)
	}
}

func TestGetTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	if proxies := GetTrustedProxies(); len(proxies) != 0 {
		t.Errorf("expected no trusted proxies, got %v", proxies)
	}

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7, not-an-ip, 172.16.0.0/99")
	proxies := GetTrustedProxies()
	if len(proxies) != 2 {
		t.Fatalf("expected 2 valid entries, got %v", proxies)
	}
	if proxies[0] != netip.MustParsePrefix("10.0.0.0/8") {
		t.Errorf("unexpected range %v", proxies[0])
	}
	if proxies[1] != netip.MustParsePrefix("192.168.1.7/32") {
		t.Errorf("expected single address as /32, got %v", proxies[1])
	}
	if !proxies[1].Contains(netip.MustParseAddr("192.168.1.7")) {
		t.Error("single address should match itself")
	}
}

func TestWarnDefaultSessionSecret(t *testing.T) {
	restore := SetJWTSecret([]byte(DefaultSessionSecret))
	if !WarnDefaultSessionSecret() {
		t.Error("expected a warning for the development secret")
	}
	restore()

	restore = SetJWTSecret([]byte("a-real-secret"))
	defer restore()
	if WarnDefaultSessionSecret() {
		t.Error("configured secret should not warn")
	}
}
