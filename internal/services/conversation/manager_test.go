package conversation

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConversation(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()

	assert.True(t, strings.HasPrefix(conv.ConversationID, "conv-"))
	assert.Empty(t, conv.Context.Messages)
	assert.Empty(t, conv.Context.MajorChanges)
	assert.True(t, m.Exists(conv.ConversationID))
	assert.Equal(t, 1, m.Count())

	other := m.CreateConversation()
	assert.NotEqual(t, conv.ConversationID, other.ConversationID)
}

func TestAddMessageUnknownConversation(t *testing.T) {
	m := NewManager()
	_, err := m.AddMessage("conv-missing", RoleUser, "hi", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMessageCapsHistory(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()

	for i := 0; i < MaxMessages; i++ {
		_, err := m.AddMessage(conv.ConversationID, RoleUser, fmt.Sprintf("message %d", i), nil)
		require.NoError(t, err)
	}
	got, _ := m.GetConversation(conv.ConversationID)
	require.Len(t, got.Context.Messages, MaxMessages)

	msg, err := m.AddMessage(conv.ConversationID, RoleAssistant, "message 50", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.ID, "msg-"))

	got, _ = m.GetConversation(conv.ConversationID)
	require.Len(t, got.Context.Messages, MaxMessages)
	assert.Equal(t, "message 1", got.Context.Messages[0].Content)
	assert.Equal(t, "message 50", got.Context.Messages[MaxMessages-1].Content)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()
	_, err := m.AddMessage(conv.ConversationID, RoleUser, "hi", &Metadata{EditedFiles: []string{"a.jsx"}})
	require.NoError(t, err)

	snapshot, _ := m.GetConversation(conv.ConversationID)
	snapshot.Context.Messages[0].Metadata.EditedFiles[0] = "mutated.jsx"

	again, _ := m.GetConversation(conv.ConversationID)
	assert.Equal(t, "a.jsx", again.Context.Messages[0].Metadata.EditedFiles[0])
}

func TestGetRecentContext(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()
	for i := 0; i < 12; i++ {
		_, _ = m.AddMessage(conv.ConversationID, RoleUser, fmt.Sprintf("m%d", i), nil)
	}

	recent := m.GetRecentContext(conv.ConversationID, 0)
	require.Len(t, recent, DefaultContextSize)
	assert.Equal(t, "m2", recent[0].Content)
	assert.Equal(t, "m11", recent[9].Content)

	assert.Len(t, m.GetRecentContext(conv.ConversationID, 3), 3)
	assert.Empty(t, m.GetRecentContext("conv-missing", 5))
}

func TestTrackMajorChangeCaps(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()

	for i := 0; i < 12; i++ {
		require.NoError(t, m.TrackMajorChange(conv.ConversationID, fmt.Sprintf("change %d", i), []string{"App.jsx"}))
	}

	got, _ := m.GetConversation(conv.ConversationID)
	require.Len(t, got.Context.MajorChanges, MaxMajorChanges)
	assert.Equal(t, "change 2", got.Context.MajorChanges[0].Description)
	assert.ErrorIs(t, m.TrackMajorChange("conv-missing", "x", nil), ErrNotFound)
}

func TestUpdateUserPreferences(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()
	style := "targeted"

	require.NoError(t, m.UpdateUserPreferences(conv.ConversationID, PreferencesUpdate{EditStyle: &style}))
	require.NoError(t, m.UpdateUserPreferences(conv.ConversationID, PreferencesUpdate{PackagePreferences: []string{"zustand"}}))

	got, _ := m.GetConversation(conv.ConversationID)
	assert.Equal(t, "targeted", got.Context.UserPreferences.EditStyle)
	assert.Equal(t, []string{"zustand"}, got.Context.UserPreferences.PackagePreferences)
	assert.ErrorIs(t, m.UpdateUserPreferences("conv-missing", PreferencesUpdate{}), ErrNotFound)
}

func TestUpdateUserPreferencesDeduplicatesPackages(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()

	packages := []string{"zustand", "framer-motion", "zustand", "clsx", "framer-motion"}
	require.NoError(t, m.UpdateUserPreferences(conv.ConversationID, PreferencesUpdate{PackagePreferences: packages}))

	got, _ := m.GetConversation(conv.ConversationID)
	assert.Equal(t, []string{"zustand", "framer-motion", "clsx"}, got.Context.UserPreferences.PackagePreferences)
	assert.Len(t, packages, 5, "caller slice must not be modified")
}

func TestCleanup(t *testing.T) {
	m := NewManager()
	start := time.Now()
	m.now = func() time.Time { return start }

	stale := m.CreateConversation()
	fresh := m.CreateConversation()

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err := m.AddMessage(fresh.ConversationID, RoleUser, "still here", nil)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(3 * time.Hour) }
	removed := m.Cleanup(90 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.False(t, m.Exists(stale.ConversationID))
	assert.True(t, m.Exists(fresh.ConversationID))
}

func TestGetStats(t *testing.T) {
	m := NewManager()
	start := time.UnixMilli(1_000_000)
	m.now = func() time.Time { return start }
	conv := m.CreateConversation()

	_, _ = m.AddMessage(conv.ConversationID, RoleUser, "build it", nil)
	_, _ = m.AddMessage(conv.ConversationID, RoleAssistant, "code", &Metadata{EditedFiles: []string{"App.jsx"}})
	_, _ = m.AddMessage(conv.ConversationID, RoleUser, "make it blue", nil)
	m.now = func() time.Time { return start.Add(5 * time.Second) }
	_, _ = m.AddMessage(conv.ConversationID, RoleAssistant, "blue code", &Metadata{IsFollowUp: true})

	stats := m.GetStats(conv.ConversationID)
	require.NotNil(t, stats)
	assert.Equal(t, Stats{
		TotalMessages:     4,
		UserMessages:      2,
		AssistantMessages: 2,
		FollowUps:         1,
		TotalEdits:        1,
		Duration:          5000,
		LastActivity:      start.Add(5 * time.Second).UnixMilli(),
	}, *stats)

	assert.Nil(t, m.GetStats("conv-missing"))
}

func TestConcurrentWritersSameConversation(t *testing.T) {
	m := NewManager()
	conv := m.CreateConversation()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.AddMessage(conv.ConversationID, RoleUser, fmt.Sprintf("m%d", i), nil)
			assert.NoError(t, err)
			_ = m.BuildContextPrompt(conv.ConversationID)
		}(i)
	}
	wg.Wait()

	got, _ := m.GetConversation(conv.ConversationID)
	assert.Len(t, got.Context.Messages, 40)
}
