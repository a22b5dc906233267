package conversation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forgeapp/forge/pkg/ids"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/forgeapp/forge/pkg/metrics"
)

const (
	MaxMessages        = 50
	MaxMajorChanges    = 10
	DefaultContextSize = 10
)

var ErrNotFound = errors.New("conversation not found")

type session struct {
	mu    sync.Mutex
	state Conversation
}

// Manager is the in-memory conversation registry. The registry lock only
// guards the map; every conversation has its own lock so writers to the
// same conversation are serialised while different conversations proceed
// independently.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

func NewManager() *Manager {
	logger.Info(logger.CONVERSATION, "Initialising conversation manager")
	return &Manager{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (m *Manager) lookup(id string) (*session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) CreateConversation() Conversation {
	now := m.now()
	state := Conversation{
		ConversationID: ids.New("conv", now),
		StartedAt:      now.UnixMilli(),
		LastUpdated:    now.UnixMilli(),
		Context: Context{
			Messages:     []Message{},
			MajorChanges: []MajorChange{},
		},
	}

	m.mu.Lock()
	m.sessions[state.ConversationID] = &session{state: state}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ConversationsActive.Set(float64(count))
	logger.Info(logger.CONVERSATION, "Created conversation %s", state.ConversationID)

	return state.clone()
}

// GetConversation returns a snapshot of the conversation.
func (m *Manager) GetConversation(id string) (Conversation, bool) {
	s, ok := m.lookup(id)
	if !ok {
		return Conversation{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone(), true
}

func (m *Manager) Exists(id string) bool {
	_, ok := m.lookup(id)
	return ok
}

// AddMessage appends a message, dropping the oldest beyond MaxMessages.
func (m *Manager) AddMessage(id string, role Role, content string, metadata *Metadata) (Message, error) {
	s, ok := m.lookup(id)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := m.now()
	msg := Message{
		ID:        ids.New("msg", now),
		Role:      role,
		Content:   content,
		Timestamp: now.UnixMilli(),
		Metadata:  metadata.clone(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(s.state.Context.Messages, msg)
	if len(messages) > MaxMessages {
		messages = append([]Message(nil), messages[len(messages)-MaxMessages:]...)
	}
	s.state.Context.Messages = messages
	s.state.LastUpdated = now.UnixMilli()

	logger.Debug(logger.CONVERSATION, "Added %s message %s to %s (%d messages)", role, msg.ID, id, len(messages))
	return msg.clone(), nil
}

// GetRecentContext returns up to max trailing messages, oldest first. An
// unknown conversation yields an empty slice.
func (m *Manager) GetRecentContext(id string, max int) []Message {
	if max <= 0 {
		max = DefaultContextSize
	}

	s, ok := m.lookup(id)
	if !ok {
		return []Message{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return recent(s.state.Context.Messages, max)
}

func recent(messages []Message, max int) []Message {
	start := 0
	if len(messages) > max {
		start = len(messages) - max
	}
	out := make([]Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		out = append(out, msg.clone())
	}
	return out
}

func (m *Manager) TrackMajorChange(id, description string, filesAffected []string) error {
	s, ok := m.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := m.now().UnixMilli()
	if filesAffected == nil {
		filesAffected = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changes := append(s.state.Context.MajorChanges, MajorChange{
		Timestamp:     now,
		Description:   description,
		FilesAffected: append([]string(nil), filesAffected...),
	})
	if len(changes) > MaxMajorChanges {
		changes = append([]MajorChange(nil), changes[len(changes)-MaxMajorChanges:]...)
	}
	s.state.Context.MajorChanges = changes
	s.state.LastUpdated = now
	return nil
}

func (m *Manager) UpdateUserPreferences(id string, update PreferencesUpdate) error {
	s, ok := m.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := &s.state.Context.UserPreferences
	if update.EditStyle != nil {
		prefs.EditStyle = *update.EditStyle
	}
	if update.PackagePreferences != nil {
		prefs.PackagePreferences = uniquePackages(update.PackagePreferences)
	}
	s.state.LastUpdated = m.now().UnixMilli()
	return nil
}

// uniquePackages copies names in first-seen order, dropping repeats.
func uniquePackages(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Cleanup removes conversations idle for longer than maxAge and returns how
// many were removed.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge).UnixMilli()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.state.LastUpdated < cutoff
		s.mu.Unlock()

		if stale {
			delete(m.sessions, id)
			removed++
		}
	}

	metrics.ConversationsActive.Set(float64(len(m.sessions)))
	if removed > 0 {
		logger.Info(logger.CONVERSATION, "Cleaned up %d idle conversations", removed)
	}
	return removed
}

// GetStats returns nil for an unknown conversation.
func (m *Manager) GetStats(id string) *Stats {
	s, ok := m.lookup(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &Stats{
		TotalMessages: len(s.state.Context.Messages),
		Duration:      m.now().UnixMilli() - s.state.StartedAt,
		LastActivity:  s.state.LastUpdated,
	}
	for _, msg := range s.state.Context.Messages {
		switch msg.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		}
		if msg.Metadata != nil {
			if msg.Metadata.IsFollowUp {
				stats.FollowUps++
			}
			if len(msg.Metadata.EditedFiles) > 0 {
				stats.TotalEdits++
			}
		}
	}
	return stats
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (c Conversation) clone() Conversation {
	out := c
	out.Context.Messages = make([]Message, len(c.Context.Messages))
	for i, msg := range c.Context.Messages {
		out.Context.Messages[i] = msg.clone()
	}
	out.Context.MajorChanges = make([]MajorChange, len(c.Context.MajorChanges))
	for i, change := range c.Context.MajorChanges {
		change.FilesAffected = append([]string(nil), change.FilesAffected...)
		out.Context.MajorChanges[i] = change
	}
	if c.Context.UserPreferences.PackagePreferences != nil {
		out.Context.UserPreferences.PackagePreferences = append([]string(nil), c.Context.UserPreferences.PackagePreferences...)
	}
	return out
}

func (msg Message) clone() Message {
	msg.Metadata = msg.Metadata.clone()
	return msg
}

func (md *Metadata) clone() *Metadata {
	if md == nil {
		return nil
	}
	out := *md
	if md.EditedFiles != nil {
		out.EditedFiles = append([]string(nil), md.EditedFiles...)
	}
	if md.AddedPackages != nil {
		out.AddedPackages = append([]string(nil), md.AddedPackages...)
	}
	if md.Usage != nil {
		usage := *md.Usage
		out.Usage = &usage
	}
	return &out
}
