package config

import "time"

type GenerationConfig struct {
	// Timeout bounds a single provider call, including the whole stream.
	Timeout time.Duration
	// StrictModelConfig rejects out-of-range model parameters with a 400
	// instead of passing them through to the vendor.
	StrictModelConfig bool
}

func GetGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Timeout:           parseEnvDuration("GENERATION_TIMEOUT", 5*time.Minute),
		StrictModelConfig: parseEnvBool("STRICT_MODEL_CONFIG", false),
	}
}

// GetSandboxFilesURL is the endpoint returning the current project files.
// Empty disables file context for follow-ups.
func GetSandboxFilesURL() string {
	return GetEnvOrDefault("SANDBOX_FILES_URL", "")
}

func GetSandboxFilesTimeout() time.Duration {
	return parseEnvDuration("SANDBOX_FILES_TIMEOUT", 5*time.Second)
}
