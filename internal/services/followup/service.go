package followup

import (
	"context"
	"fmt"

	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/services/aiconfig"
	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/forgeapp/forge/pkg/metrics"
)

const (
	DefaultModel = "moonshotai/kimi-k2-instruct-0905"
	EditType     = "follow-up-refinement"

	snapshotLength = 1000
)

// Edits lean towards determinism compared with fresh generation.
var defaultConfig = aiconfig.ModelConfig{
	Temperature: aiconfig.Float(0.3),
	TopP:        aiconfig.Float(0.8),
	MaxTokens:   aiconfig.Int(6000),
}

// FileLister returns the source file paths of the user's sandbox.
type FileLister interface {
	SourceFiles(ctx context.Context, sandboxID string) ([]string, error)
}

type Service struct {
	generation    *generation.Service
	conversations *conversation.Manager
	files         FileLister
}

func NewService(generationService *generation.Service, conversations *conversation.Manager, files FileLister) *Service {
	return &Service{
		generation:    generationService,
		conversations: conversations,
		files:         files,
	}
}

// Prepare builds the follow-up call. It fails with conversation.ErrNotFound
// for an unknown conversation; a failed file lookup only drops the file
// list from the prompt.
func (s *Service) Prepare(ctx context.Context, req models.FollowUpRequest) (generation.Call, error) {
	if !s.conversations.Exists(req.ConversationID) {
		return generation.Call{}, fmt.Errorf("%w: %s", conversation.ErrNotFound, req.ConversationID)
	}

	modelID := req.Model
	if modelID == "" {
		modelID = DefaultModel
	}

	cfg, err := s.generation.Configure(modelID, defaultConfig, req.AIConfig)
	if err != nil {
		return generation.Call{}, err
	}

	files := s.currentFiles(ctx, req.SandboxID)
	contextPrompt := s.conversations.BuildContextPrompt(req.ConversationID)

	logger.Info(logger.SERVICE, "Preparing follow-up for %s with %d files in context", req.ConversationID, len(files))

	return generation.Call{
		Kind:  generation.KindFollowUp,
		Model: s.generation.Resolve(modelID),
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt(contextPrompt, files)},
			{Role: llm.RoleUser, Content: userPrompt(req.FollowUpInstruction)},
		},
		Config: cfg,
		Preamble: []models.Status{
			{Message: fmt.Sprintf("Applying follow-up with %d project files in context", len(files))},
		},
		Finalize: func(result generation.Result) (models.Complete, error) {
			return s.record(req, result)
		},
	}, nil
}

func (s *Service) currentFiles(ctx context.Context, sandboxID string) []string {
	if s.files == nil {
		return nil
	}

	files, err := s.files.SourceFiles(ctx, sandboxID)
	if err != nil {
		metrics.SandboxFetchFailures.Inc()
		logger.Warn(logger.SERVICE, "Continuing follow-up without file context: %v", err)
		return nil
	}
	return files
}

// record appends the generated code to the conversation so later
// follow-ups can build on it.
func (s *Service) record(req models.FollowUpRequest, result generation.Result) (models.Complete, error) {
	snapshot := result.Content
	if runes := []rune(snapshot); len(runes) > snapshotLength {
		snapshot = string(runes[:snapshotLength])
	}

	_, err := s.conversations.AddMessage(req.ConversationID, conversation.RoleAssistant, result.Content, &conversation.Metadata{
		IsFollowUp:      true,
		ParentMessageID: req.ParentMessageID,
		EditType:        EditType,
		CodeSnapshot:    snapshot,
		Usage:           result.Usage,
		FinishReason:    result.FinishReason,
	})
	if err != nil {
		return models.Complete{}, err
	}

	return models.Complete{
		Content:         result.Content,
		Usage:           result.Usage,
		FinishReason:    result.FinishReason,
		ConversationID:  req.ConversationID,
		ParentMessageID: req.ParentMessageID,
	}, nil
}
