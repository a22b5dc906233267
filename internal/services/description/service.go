package description

import (
	"fmt"

	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/services/aiconfig"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/pkg/logger"
)

const (
	DefaultModel = "openai/gpt-4o-mini"
	DefaultStyle = "modern"
)

var defaultConfig = aiconfig.ModelConfig{
	Temperature: aiconfig.Float(0.7),
	MaxTokens:   aiconfig.Int(4000),
}

// Service turns a free-text app description into a generation call.
type Service struct {
	generation *generation.Service
}

func NewService(generationService *generation.Service) *Service {
	return &Service{generation: generationService}
}

// Prepare builds the call for req. The description must be non-empty.
func (s *Service) Prepare(req models.DescriptionRequest) (generation.Call, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = DefaultModel
	}
	style := req.Style
	if style == "" {
		style = DefaultStyle
	}

	appType := DetectAppType(req.Description)
	tmpl := Template(appType)

	logger.Info(logger.SERVICE, "Detected app type %s (%s) for description request", appType, tmpl.Name)

	cfg, err := s.generation.Configure(modelID, defaultConfig, aiconfig.ModelConfig{})
	if err != nil {
		return generation.Call{}, err
	}

	return generation.Call{
		Kind:  generation.KindDescription,
		Model: s.generation.Resolve(modelID),
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt(req.Description, style, tmpl)},
			{Role: llm.RoleUser, Content: userPrompt(req.Description, style, tmpl)},
		},
		Config: cfg,
		Preamble: []models.Status{
			{Message: fmt.Sprintf("Analyzing your request: \"%s\"", req.Description)},
			{Message: "Detected app type: " + tmpl.Name},
			{Message: "Planning component architecture..."},
			{Message: "Generating application code..."},
		},
		Finalize: func(result generation.Result) (models.Complete, error) {
			return models.Complete{
				Content:  result.Content,
				AppType:  appType,
				Template: &tmpl,
				Message:  fmt.Sprintf("Successfully generated %s!", tmpl.Name),
			}, nil
		},
		FormatError: func(err error) string {
			return "Failed to generate app: " + err.Error()
		},
	}, nil
}
