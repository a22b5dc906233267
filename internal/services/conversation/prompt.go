package conversation

import (
	"fmt"
	"strings"
)

const (
	promptMessages     = 5
	promptMajorChanges = 3
	promptContentLimit = 200
)

// BuildContextPrompt renders the recent history of a conversation for
// inclusion in a follow-up system prompt. Empty when there are no messages.
func (m *Manager) BuildContextPrompt(id string) string {
	s, ok := m.lookup(id)
	if !ok {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := recent(s.state.Context.Messages, promptMessages)
	if len(messages) == 0 {
		return ""
	}

	sections := []string{
		"## Conversation Context",
		"Previous interactions in this session:\n",
	}

	for _, msg := range messages {
		role := "Assistant"
		if msg.Role == RoleUser {
			role = "User"
		}
		sections = append(sections, fmt.Sprintf("**%s**: %s", role, truncate(msg.Content, promptContentLimit)))

		if msg.Metadata != nil && len(msg.Metadata.EditedFiles) > 0 {
			sections = append(sections, "  → Modified: "+strings.Join(msg.Metadata.EditedFiles, ", "))
		}
	}

	changes := s.state.Context.MajorChanges
	if len(changes) > 0 {
		sections = append(sections, "\n## Project Evolution")
		if len(changes) > promptMajorChanges {
			changes = changes[len(changes)-promptMajorChanges:]
		}
		for _, change := range changes {
			sections = append(sections, fmt.Sprintf("- %s (%s)", change.Description, strings.Join(change.FilesAffected, ", ")))
		}
	}

	prefs := s.state.Context.UserPreferences
	if prefs.EditStyle != "" || len(prefs.PackagePreferences) > 0 {
		sections = append(sections, "\n## User Preferences")
		if prefs.EditStyle != "" {
			sections = append(sections, "- Edit style: "+prefs.EditStyle)
		}
		if len(prefs.PackagePreferences) > 0 {
			sections = append(sections, "- Preferred packages: "+strings.Join(prefs.PackagePreferences, ", "))
		}
	}

	return strings.Join(sections, "\n")
}

// truncate cuts s to limit characters, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
