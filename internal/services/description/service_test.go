package description

import (
	"context"
	"errors"
	"testing"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/infrastructure/llm/llmtest"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/internal/services/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(gen llm.Generator) *Service {
	adapter := provider.NewAdapterWithGenerators(map[llm.Vendor]llm.Generator{
		llm.VendorOpenAI: gen,
		llm.VendorGroq:   gen,
	})
	return NewService(generation.NewService(adapter, config.GenerationConfig{}))
}

func TestDetectAppType(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"A place to keep my journal", "note-taking"},
		{"Simple TODO tracker", "todo"},
		{"Show the 5 day forecast", "weather"},
		{"scientific calculator", "calculator"},
		{"Write articles", "blog"},
		{"My resume site", "portfolio"},
		{"An online shop for shoes", "ecommerce"},
		{"Sales analytics", "dashboard"},
		{"Task list with notes", "note-taking"},
		{"something completely different", "portfolio"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAppType(tt.description))
		})
	}
}

func TestTemplateReturnsCopy(t *testing.T) {
	tmpl := Template("todo")
	tmpl.Components[0] = "Changed"

	assert.Equal(t, "TodoList", Template("todo").Components[0])
	assert.Equal(t, "Portfolio Website", Template("unknown").Name)
}

func TestPrepareDefaults(t *testing.T) {
	gen := &llmtest.Generator{}
	svc := newTestService(gen)

	call, err := svc.Prepare(models.DescriptionRequest{Description: "a todo app"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, call.Model.ModelID)
	assert.Equal(t, llm.VendorOpenAI, call.Model.Vendor)
	assert.Equal(t, "gpt-4o-mini", call.Model.Name)
	assert.Equal(t, 0.7, *call.Config.Temperature)
	assert.Equal(t, 4000, *call.Config.MaxTokens)
	assert.Nil(t, call.Config.TopP)

	require.Len(t, call.Messages, 2)
	assert.Contains(t, call.Messages[0].Content, `USER REQUEST: "a todo app"`)
	assert.Contains(t, call.Messages[0].Content, "DETECTED APP TYPE: Todo List App")
	assert.Contains(t, call.Messages[0].Content, "- Clean, minimalist design with subtle shadows and rounded corners")
	assert.Contains(t, call.Messages[1].Content, `Create a complete todo list app based on this description: "a todo app"`)

	assert.Equal(t, []models.Status{
		{Message: `Analyzing your request: "a todo app"`},
		{Message: "Detected app type: Todo List App"},
		{Message: "Planning component architecture..."},
		{Message: "Generating application code..."},
	}, call.Preamble)
}

func TestDescriptionStream(t *testing.T) {
	gen := &llmtest.Generator{Parts: []string{"<App/>"}}
	svc := newTestService(gen)

	call, err := svc.Prepare(models.DescriptionRequest{Description: "weather app", Style: "playful"})
	require.NoError(t, err)

	var events []models.Event
	for ev := range svc.generation.Stream(context.Background(), call) {
		events = append(events, ev)
	}

	require.Len(t, events, 6)
	complete, ok := events[5].(models.Complete)
	require.True(t, ok)
	assert.Equal(t, "<App/>", complete.Content)
	assert.Equal(t, "weather", complete.AppType)
	assert.Equal(t, "Weather App", complete.Template.Name)
	assert.Equal(t, "Successfully generated Weather App!", complete.Message)
	assert.Nil(t, complete.Usage)
}

func TestDescriptionStreamError(t *testing.T) {
	gen := &llmtest.Generator{OpenErr: errors.New("quota exceeded")}
	svc := newTestService(gen)

	call, err := svc.Prepare(models.DescriptionRequest{Description: "blog"})
	require.NoError(t, err)

	var last models.Event
	for ev := range svc.generation.Stream(context.Background(), call) {
		last = ev
	}
	assert.Equal(t, models.Error{Message: "Failed to generate app: quota exceeded"}, last)
}
