package models

import "github.com/forgeapp/forge/internal/infrastructure/llm"

// Event is one item of a generation stream: Chunk, Status, Complete or
// Error. A stream carries any number of Chunk and Status events followed
// by exactly one Complete or Error.
type Event interface {
	isEvent()
}

type Chunk struct {
	Content     string `json:"content"`
	FullContent string `json:"fullContent"`
}

type Status struct {
	Message string `json:"message"`
}

// AppTemplate describes the kind of app a description was matched to.
type AppTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
	Features    []string `json:"features"`
}

// Complete carries the full generated text. The optional fields are set by
// the endpoint that owns them.
type Complete struct {
	Content         string       `json:"content"`
	Usage           *llm.Usage   `json:"usage,omitempty"`
	FinishReason    string       `json:"finishReason,omitempty"`
	ConversationID  string       `json:"conversationId,omitempty"`
	ParentMessageID string       `json:"parentMessageId,omitempty"`
	AppType         string       `json:"appType,omitempty"`
	Template        *AppTemplate `json:"template,omitempty"`
	Message         string       `json:"message,omitempty"`
}

type Error struct {
	Message string
}

func (Chunk) isEvent()    {}
func (Status) isEvent()   {}
func (Complete) isEvent() {}
func (Error) isEvent()    {}

// IsTerminal reports whether ev ends a stream.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case Complete, Error:
		return true
	default:
		return false
	}
}
