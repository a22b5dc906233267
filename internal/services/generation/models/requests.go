package models

import "github.com/forgeapp/forge/internal/services/aiconfig"

type GenerateRequest struct {
	Prompt       string               `json:"prompt" validate:"required"`
	Model        string               `json:"model"`
	AIConfig     aiconfig.ModelConfig `json:"aiConfig"`
	SystemPrompt string               `json:"systemPrompt"`
	Context      string               `json:"context"`
}

type DescriptionRequest struct {
	Description string `json:"description" validate:"required"`
	Model       string `json:"model"`
	Style       string `json:"style"`
}

type FollowUpRequest struct {
	FollowUpInstruction string               `json:"followUpInstruction" validate:"required"`
	ConversationID      string               `json:"conversationId" validate:"required"`
	ParentMessageID     string               `json:"parentMessageId"`
	Model               string               `json:"model"`
	AIConfig            aiconfig.ModelConfig `json:"aiConfig"`
	SandboxID           string               `json:"sandboxId"`
}
