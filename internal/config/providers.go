package config

import "github.com/forgeapp/forge/pkg/logger"

const (
	DefaultGatewayBaseURL   = "https://ai-gateway.vercel.sh/v1"
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	DefaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultGroqBaseURL      = "https://api.groq.com/openai/v1"
)

// VendorConfig is the credential and endpoint a single vendor client is built from.
type VendorConfig struct {
	APIKey  string
	BaseURL string
}

// ProviderConfig holds the per-vendor settings after the gateway override is applied.
type ProviderConfig struct {
	UsingGateway bool
	Anthropic    VendorConfig
	OpenAI       VendorConfig
	Google       VendorConfig
	Groq         VendorConfig
}

// GetProviderConfig reads vendor credentials. When AI_GATEWAY_API_KEY is set
// every vendor shares the gateway key and base URL.
func GetProviderConfig() ProviderConfig {
	gatewayKey := GetEnvOrDefault("AI_GATEWAY_API_KEY", "")

	if gatewayKey != "" {
		gateway := VendorConfig{
			APIKey:  gatewayKey,
			BaseURL: GetEnvOrDefault("AI_GATEWAY_BASE_URL", DefaultGatewayBaseURL),
		}
		logger.Info(logger.CONFIG, "AI gateway configured, routing all vendors through %s", gateway.BaseURL)
		return ProviderConfig{
			UsingGateway: true,
			Anthropic:    gateway,
			OpenAI:       gateway,
			Google:       gateway,
			Groq:         gateway,
		}
	}

	cfg := ProviderConfig{
		Anthropic: VendorConfig{
			APIKey:  GetEnvOrDefault("ANTHROPIC_API_KEY", ""),
			BaseURL: GetEnvOrDefault("ANTHROPIC_BASE_URL", DefaultAnthropicBaseURL),
		},
		OpenAI: VendorConfig{
			APIKey:  GetEnvOrDefault("OPENAI_API_KEY", ""),
			BaseURL: GetEnvOrDefault("OPENAI_BASE_URL", ""),
		},
		Google: VendorConfig{
			APIKey:  GetEnvOrDefault("GEMINI_API_KEY", ""),
			BaseURL: GetEnvOrDefault("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		},
		Groq: VendorConfig{
			APIKey:  GetEnvOrDefault("GROQ_API_KEY", ""),
			BaseURL: GetEnvOrDefault("GROQ_BASE_URL", DefaultGroqBaseURL),
		},
	}

	for name, vendor := range map[string]VendorConfig{
		"anthropic": cfg.Anthropic,
		"openai":    cfg.OpenAI,
		"google":    cfg.Google,
		"groq":      cfg.Groq,
	} {
		if vendor.APIKey == "" {
			logger.Warn(logger.CONFIG, "No API key configured for %s - requests routed there will fail", name)
		}
	}

	return cfg
}
