package aiconfig

// ModelConfig holds the tunable generation parameters. Nil fields are
// unset and fall back to the model defaults.
type ModelConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	MaxTokens        *int     `json:"maxTokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
	StopSequences    []string `json:"stopSequences,omitempty"`
}

// Range is an inclusive [min, max] bound.
type Range [2]float64

func (r Range) Min() float64 { return r[0] }
func (r Range) Max() float64 { return r[1] }

func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

type Capabilities struct {
	SupportsTemperature      bool        `json:"supportsTemperature"`
	SupportsTopP             bool        `json:"supportsTopP"`
	SupportsMaxTokens        bool        `json:"supportsMaxTokens"`
	SupportsFrequencyPenalty bool        `json:"supportsFrequencyPenalty"`
	SupportsPresencePenalty  bool        `json:"supportsPresencePenalty"`
	SupportsStopSequences    bool        `json:"supportsStopSequences"`
	TemperatureRange         Range       `json:"temperatureRange"`
	TopPRange                Range       `json:"topPRange"`
	MaxTokensRange           Range       `json:"maxTokensRange"`
	DefaultConfig            ModelConfig `json:"defaultConfig"`
}

// AllModels marks a preset that applies to every model.
const AllModels = "all"

type Preset struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Config      ModelConfig `json:"config"`
	ModelID     string      `json:"modelId"`
	IsDefault   bool        `json:"isDefault,omitempty"`
	CreatedAt   int64       `json:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt"`
}

// PresetUpdate carries the fields to overwrite on an existing preset.
type PresetUpdate struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Config      *ModelConfig `json:"config,omitempty"`
	ModelID     *string      `json:"modelId,omitempty"`
	IsDefault   *bool        `json:"isDefault,omitempty"`
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
