package aiconfig

import (
	"fmt"
	"sort"
)

// FallbackModel supplies capabilities for unknown model ids.
const FallbackModel = "openai/gpt-5"

var penaltyRange = Range{-2, 2}

var modelCapabilities = map[string]Capabilities{
	"openai/gpt-5": {
		SupportsTemperature:      true,
		SupportsTopP:             true,
		SupportsMaxTokens:        true,
		SupportsFrequencyPenalty: true,
		SupportsPresencePenalty:  true,
		SupportsStopSequences:    true,
		TemperatureRange:         Range{0, 2},
		TopPRange:                Range{0, 1},
		MaxTokensRange:           Range{1, 16384},
		DefaultConfig: ModelConfig{
			Temperature:      Float(0.7),
			TopP:             Float(1),
			MaxTokens:        Int(8000),
			FrequencyPenalty: Float(0),
			PresencePenalty:  Float(0),
			StopSequences:    []string{},
		},
	},
	"moonshotai/kimi-k2-instruct-0905": {
		SupportsTemperature: true,
		SupportsTopP:        true,
		SupportsMaxTokens:   true,
		TemperatureRange:    Range{0, 1},
		TopPRange:           Range{0, 1},
		MaxTokensRange:      Range{1, 8192},
		DefaultConfig: ModelConfig{
			Temperature: Float(0.7),
			TopP:        Float(0.9),
			MaxTokens:   Int(8000),
		},
	},
	"anthropic/claude-sonnet-4-20250514": {
		SupportsTemperature:   true,
		SupportsTopP:          true,
		SupportsMaxTokens:     true,
		SupportsStopSequences: true,
		TemperatureRange:      Range{0, 1},
		TopPRange:             Range{0, 1},
		MaxTokensRange:        Range{1, 8192},
		DefaultConfig: ModelConfig{
			Temperature:   Float(0.7),
			TopP:          Float(0.9),
			MaxTokens:     Int(8000),
			StopSequences: []string{},
		},
	},
	"google/gemini-2.0-flash-exp": {
		SupportsTemperature:   true,
		SupportsTopP:          true,
		SupportsMaxTokens:     true,
		SupportsStopSequences: true,
		TemperatureRange:      Range{0, 2},
		TopPRange:             Range{0, 1},
		MaxTokensRange:        Range{1, 8192},
		DefaultConfig: ModelConfig{
			Temperature:   Float(0.7),
			TopP:          Float(0.95),
			MaxTokens:     Int(8000),
			StopSequences: []string{},
		},
	},
}

// GetCapabilities never fails: unknown ids get the fallback model's entry.
func GetCapabilities(modelID string) Capabilities {
	if caps, ok := modelCapabilities[modelID]; ok {
		return caps
	}
	return modelCapabilities[FallbackModel]
}

// IsKnownModel reports whether modelID has its own capability entry.
func IsKnownModel(modelID string) bool {
	_, ok := modelCapabilities[modelID]
	return ok
}

// Models lists the ids with a capability entry in sorted order.
func Models() []string {
	ids := make([]string, 0, len(modelCapabilities))
	for id := range modelCapabilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate reports every present field that lies outside the model's
// bounds. Penalties are only checked for models that accept them.
func Validate(config ModelConfig, modelID string) []string {
	caps := GetCapabilities(modelID)
	errors := []string{}

	if config.Temperature != nil && !caps.TemperatureRange.Contains(*config.Temperature) {
		errors = append(errors, rangeMessage("Temperature", caps.TemperatureRange))
	}
	if config.TopP != nil && !caps.TopPRange.Contains(*config.TopP) {
		errors = append(errors, rangeMessage("Top-p", caps.TopPRange))
	}
	if config.MaxTokens != nil && !caps.MaxTokensRange.Contains(float64(*config.MaxTokens)) {
		errors = append(errors, rangeMessage("Max tokens", caps.MaxTokensRange))
	}
	if caps.SupportsFrequencyPenalty && config.FrequencyPenalty != nil && !penaltyRange.Contains(*config.FrequencyPenalty) {
		errors = append(errors, rangeMessage("Frequency penalty", penaltyRange))
	}
	if caps.SupportsPresencePenalty && config.PresencePenalty != nil && !penaltyRange.Contains(*config.PresencePenalty) {
		errors = append(errors, rangeMessage("Presence penalty", penaltyRange))
	}

	return errors
}

func rangeMessage(field string, r Range) string {
	return fmt.Sprintf("%s must be between %g and %g", field, r.Min(), r.Max())
}

// Merge overlays override onto base field by field.
func Merge(base, override ModelConfig) ModelConfig {
	merged := base
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	if override.StopSequences != nil {
		merged.StopSequences = override.StopSequences
	}
	return merged
}

// Supported clears the fields the model does not accept.
func Supported(config ModelConfig, caps Capabilities) ModelConfig {
	if !caps.SupportsTemperature {
		config.Temperature = nil
	}
	if !caps.SupportsTopP {
		config.TopP = nil
	}
	if !caps.SupportsMaxTokens {
		config.MaxTokens = nil
	}
	if !caps.SupportsFrequencyPenalty {
		config.FrequencyPenalty = nil
	}
	if !caps.SupportsPresencePenalty {
		config.PresencePenalty = nil
	}
	if !caps.SupportsStopSequences || len(config.StopSequences) == 0 {
		config.StopSequences = nil
	}
	return config
}
