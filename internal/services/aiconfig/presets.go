package aiconfig

import (
	"strings"
	"time"

	"github.com/forgeapp/forge/pkg/ids"
)

type presetSeed struct {
	name        string
	description string
	config      ModelConfig
	isDefault   bool
}

var builtinPresets = []presetSeed{
	{
		name:        "Balanced",
		description: "Good balance of creativity and consistency",
		config:      ModelConfig{Temperature: Float(0.7), TopP: Float(0.9), MaxTokens: Int(8000)},
		isDefault:   true,
	},
	{
		name:        "Creative",
		description: "More creative and varied outputs",
		config:      ModelConfig{Temperature: Float(0.9), TopP: Float(0.95), MaxTokens: Int(8000)},
	},
	{
		name:        "Precise",
		description: "More deterministic and focused outputs",
		config:      ModelConfig{Temperature: Float(0.3), TopP: Float(0.8), MaxTokens: Int(8000)},
	},
	{
		name:        "Code Focused",
		description: "Optimized for code generation tasks",
		config:      ModelConfig{Temperature: Float(0.2), TopP: Float(0.85), MaxTokens: Int(12000)},
	},
}

// DefaultPresets returns the built-in presets. Ids are derived from the
// names so they are stable across calls.
func DefaultPresets(now time.Time) []Preset {
	presets := make([]Preset, len(builtinPresets))
	for i, seed := range builtinPresets {
		presets[i] = Preset{
			ID:          "default-" + strings.Join(strings.Fields(strings.ToLower(seed.name)), "-"),
			Name:        seed.name,
			Description: seed.description,
			Config:      seed.config,
			ModelID:     AllModels,
			IsDefault:   seed.isDefault,
			CreatedAt:   now.UnixMilli(),
			UpdatedAt:   now.UnixMilli(),
		}
	}
	return presets
}

// NewPreset stamps a fresh custom preset. It is not persisted.
func NewPreset(name, description string, config ModelConfig, modelID string, now time.Time) Preset {
	if modelID == "" {
		modelID = AllModels
	}
	return Preset{
		ID:          ids.New("custom", now),
		Name:        name,
		Description: description,
		Config:      config,
		ModelID:     modelID,
		CreatedAt:   now.UnixMilli(),
		UpdatedAt:   now.UnixMilli(),
	}
}

// UpdatePreset returns a copy of presets with the matching preset updated,
// and whether it was found.
func UpdatePreset(presets []Preset, id string, update PresetUpdate, now time.Time) ([]Preset, bool) {
	out := make([]Preset, len(presets))
	found := false
	for i, p := range presets {
		if p.ID == id {
			found = true
			if update.Name != nil {
				p.Name = *update.Name
			}
			if update.Description != nil {
				p.Description = *update.Description
			}
			if update.Config != nil {
				p.Config = *update.Config
			}
			if update.ModelID != nil {
				p.ModelID = *update.ModelID
			}
			if update.IsDefault != nil {
				p.IsDefault = *update.IsDefault
			}
			p.UpdatedAt = now.UnixMilli()
		}
		out[i] = p
	}
	return out, found
}

// DeletePreset filters id out of presets.
func DeletePreset(presets []Preset, id string) []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// ResolveDefault picks, in order: the model's own default, the general
// default, the first preset. Nil when presets is empty.
func ResolveDefault(presets []Preset, modelID string) *Preset {
	for i := range presets {
		if presets[i].ModelID == modelID && presets[i].IsDefault {
			return &presets[i]
		}
	}
	for i := range presets {
		if presets[i].ModelID == AllModels && presets[i].IsDefault {
			return &presets[i]
		}
	}
	if len(presets) > 0 {
		return &presets[0]
	}
	return nil
}
