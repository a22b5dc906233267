package generation

import (
	"context"
	"time"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/services/aiconfig"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/internal/services/provider"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/forgeapp/forge/pkg/metrics"
)

const (
	DefaultModel = aiconfig.FallbackModel

	KindGenerate    = "generate"
	KindDescription = "description"
	KindFollowUp    = "follow-up"
)

type Resolver interface {
	Resolve(modelID string) provider.ResolvedModel
}

// Result is the outcome of a provider call that ran to completion.
type Result struct {
	Content      string
	Usage        *llm.Usage
	FinishReason string
}

// Call is one prepared generation. Preamble events are sent before the
// provider is contacted. Finalize, when set, builds the completion event
// and may record side effects; an error from it ends the stream with an
// Error event instead. FormatError rewrites error messages for the client.
type Call struct {
	Kind        string
	Model       provider.ResolvedModel
	Messages    []llm.Message
	Config      aiconfig.ModelConfig
	Preamble    []models.Status
	Finalize    func(Result) (models.Complete, error)
	FormatError func(error) string
}

func (c Call) request() llm.Request {
	return llm.Request{
		Model:            c.Model.Name,
		Messages:         c.Messages,
		Temperature:      c.Config.Temperature,
		TopP:             c.Config.TopP,
		MaxTokens:        c.Config.MaxTokens,
		FrequencyPenalty: c.Config.FrequencyPenalty,
		PresencePenalty:  c.Config.PresencePenalty,
		Stop:             c.Config.StopSequences,
	}
}

type Service struct {
	resolver Resolver
	config   config.GenerationConfig
}

func NewService(resolver Resolver, cfg config.GenerationConfig) *Service {
	logger.Info(logger.SERVICE, "Initialising generation service (timeout: %s, strict config: %t)", cfg.Timeout, cfg.StrictModelConfig)
	return &Service{
		resolver: resolver,
		config:   cfg,
	}
}

func (s *Service) Resolve(modelID string) provider.ResolvedModel {
	return s.resolver.Resolve(modelID)
}

// Configure merges override onto defaults, checks the result against the
// model's ranges and drops the fields the model does not accept.
// Violations are logged; they only fail the call in strict mode.
func (s *Service) Configure(modelID string, defaults, override aiconfig.ModelConfig) (aiconfig.ModelConfig, error) {
	merged := aiconfig.Merge(defaults, override)

	if violations := aiconfig.Validate(merged, modelID); len(violations) > 0 {
		metrics.ConfigViolationsTotal.WithLabelValues(modelID).Inc()
		if s.config.StrictModelConfig {
			return aiconfig.ModelConfig{}, &ValidationError{Model: modelID, Violations: violations}
		}
		logger.Warn(logger.SERVICE, "Passing out-of-range config through for %s: %v", modelID, violations)
	}

	return aiconfig.Supported(merged, aiconfig.GetCapabilities(modelID)), nil
}

// PrepareGenerate builds a fresh generation call.
func (s *Service) PrepareGenerate(req models.GenerateRequest) (Call, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = DefaultModel
	}

	cfg, err := s.Configure(modelID, aiconfig.GetCapabilities(modelID).DefaultConfig, req.AIConfig)
	if err != nil {
		return Call{}, err
	}

	messages := make([]llm.Message, 0, 3)
	if req.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	if req.Context != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "Context: " + req.Context})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Prompt})

	return Call{
		Kind:     KindGenerate,
		Model:    s.resolver.Resolve(modelID),
		Messages: messages,
		Config:   cfg,
	}, nil
}

// Stream runs call in its own goroutine. The returned channel carries the
// events and is closed after the terminal event. If ctx is cancelled first
// the provider call is abandoned and the channel closes without one.
func (s *Service) Stream(ctx context.Context, call Call) <-chan models.Event {
	events := make(chan models.Event)
	go s.run(ctx, call, events)
	return events
}

func (s *Service) run(ctx context.Context, call Call, events chan<- models.Event) {
	defer close(events)

	vendor := string(call.Model.Vendor)
	metrics.ActiveStreams.WithLabelValues(call.Kind).Inc()
	defer metrics.ActiveStreams.WithLabelValues(call.Kind).Dec()

	start := time.Now()
	outcome := "cancelled"
	defer func() {
		metrics.GenerationsTotal.WithLabelValues(call.Kind, vendor, outcome).Inc()
		metrics.GenerationDuration.WithLabelValues(call.Kind, vendor).Observe(time.Since(start).Seconds())
	}()

	send := func(ev models.Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, status := range call.Preamble {
		if !send(status) {
			logger.Info(logger.STREAM, "Client went away before %s generation started", call.Kind)
			return
		}
	}

	result, err := s.relay(ctx, call, send)
	if ctx.Err() != nil {
		logger.Info(logger.STREAM, "Client disconnected during %s generation with %s, stopping", call.Kind, call.Model.ModelID)
		return
	}
	if err != nil {
		outcome = "error"
		logger.Error(logger.STREAM, "%s generation with %s failed: %v", call.Kind, call.Model.ModelID, err)
		send(models.Error{Message: call.errorMessage(err)})
		return
	}

	complete := models.Complete{
		Content:      result.Content,
		Usage:        result.Usage,
		FinishReason: result.FinishReason,
	}
	if call.Finalize != nil {
		if complete, err = call.Finalize(result); err != nil {
			outcome = "error"
			logger.Error(logger.STREAM, "Failed to finalise %s generation: %v", call.Kind, err)
			send(models.Error{Message: call.errorMessage(err)})
			return
		}
	}

	if result.Usage != nil {
		metrics.TokensTotal.WithLabelValues(vendor, "prompt").Add(float64(result.Usage.PromptTokens))
		metrics.TokensTotal.WithLabelValues(vendor, "completion").Add(float64(result.Usage.CompletionTokens))
	}

	if send(complete) {
		outcome = "success"
		logger.Info(logger.STREAM, "%s generation with %s complete (%d chars)", call.Kind, call.Model.ModelID, len(result.Content))
	}
}

func (c Call) errorMessage(err error) string {
	if c.FormatError != nil {
		return c.FormatError(err)
	}
	return err.Error()
}
