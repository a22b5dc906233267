package conversation

import "github.com/forgeapp/forge/internal/infrastructure/llm"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Metadata struct {
	IsFollowUp      bool       `json:"isFollowUp,omitempty"`
	ParentMessageID string     `json:"parentMessageId,omitempty"`
	EditedFiles     []string   `json:"editedFiles,omitempty"`
	AddedPackages   []string   `json:"addedPackages,omitempty"`
	EditType        string     `json:"editType,omitempty"`
	CodeSnapshot    string     `json:"codeSnapshot,omitempty"`
	Usage           *llm.Usage `json:"usage,omitempty"`
	FinishReason    string     `json:"finishReason,omitempty"`
}

// Message timestamps are unix milliseconds.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

type MajorChange struct {
	Timestamp     int64    `json:"timestamp"`
	Description   string   `json:"description"`
	FilesAffected []string `json:"filesAffected"`
}

type Preferences struct {
	EditStyle          string   `json:"editStyle,omitempty"`
	PackagePreferences []string `json:"packagePreferences,omitempty"`
}

// PreferencesUpdate replaces only the fields that are set.
type PreferencesUpdate struct {
	EditStyle          *string  `json:"editStyle,omitempty"`
	PackagePreferences []string `json:"packagePreferences,omitempty"`
}

type Context struct {
	Messages        []Message     `json:"messages"`
	MajorChanges    []MajorChange `json:"majorChanges"`
	UserPreferences Preferences   `json:"userPreferences"`
}

type Conversation struct {
	ConversationID string  `json:"conversationId"`
	StartedAt      int64   `json:"startedAt"`
	LastUpdated    int64   `json:"lastUpdated"`
	Context        Context `json:"context"`
}

type Stats struct {
	TotalMessages     int   `json:"totalMessages"`
	UserMessages      int   `json:"userMessages"`
	AssistantMessages int   `json:"assistantMessages"`
	FollowUps         int   `json:"followUps"`
	TotalEdits        int   `json:"totalEdits"`
	Duration          int64 `json:"duration"`
	LastActivity      int64 `json:"lastActivity"`
}
