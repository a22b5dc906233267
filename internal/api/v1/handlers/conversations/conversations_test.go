package conversations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(*conversation.Manager, http.ResponseWriter, *http.Request)

func call(t *testing.T, manager *conversation.Manager, handler handlerFunc, method, target, id string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	if id != "" {
		r = mux.SetURLVars(r, map[string]string{"id": id})
	}
	rec := httptest.NewRecorder()
	handler(manager, rec, r)
	return rec
}

func createConversation(t *testing.T, manager *conversation.Manager) string {
	t.Helper()
	rec := call(t, manager, HandleCreate, http.MethodPost, "/v1/conversations", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var conv conversation.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.Regexp(t, `^conv-\d+-[0-9a-z]{9}$`, conv.ConversationID)
	return conv.ConversationID
}

func TestUnknownConversation(t *testing.T) {
	manager := conversation.NewManager()

	tests := []struct {
		name    string
		handler handlerFunc
		method  string
		body    interface{}
	}{
		{"Get", HandleGet, http.MethodGet, nil},
		{"AddMessage", HandleAddMessage, http.MethodPost, AddMessageRequest{Role: conversation.RoleUser, Content: "hi"}},
		{"Context", HandleContext, http.MethodGet, nil},
		{"Prompt", HandlePrompt, http.MethodGet, nil},
		{"TrackChange", HandleTrackChange, http.MethodPost, TrackChangeRequest{Description: "x"}},
		{"Preferences", HandlePreferences, http.MethodPatch, map[string]string{"editStyle": "minimal"}},
		{"Stats", HandleStats, http.MethodGet, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, manager, tt.handler, tt.method, "/v1/conversations/conv-nope", "conv-nope", tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestConversationFlow(t *testing.T) {
	manager := conversation.NewManager()
	id := createConversation(t, manager)

	rec := call(t, manager, HandleAddMessage, http.MethodPost, "/", id, AddMessageRequest{Role: conversation.RoleUser, Content: "make a todo app"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, manager, HandleAddMessage, http.MethodPost, "/", id, AddMessageRequest{
		Role:     conversation.RoleAssistant,
		Content:  "done",
		Metadata: &conversation.Metadata{EditedFiles: []string{"src/App.jsx"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, manager, HandleAddMessage, http.MethodPost, "/", id, AddMessageRequest{Role: "system", Content: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, manager, HandleTrackChange, http.MethodPost, "/", id, TrackChangeRequest{Description: "Added dark mode", FilesAffected: []string{"src/App.jsx"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, manager, HandlePreferences, http.MethodPatch, "/", id, map[string]string{"editStyle": "minimal"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"editStyle":"minimal"}`, rec.Body.String())

	rec = call(t, manager, HandleContext, http.MethodGet, "/?max=1", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ctxResp struct {
		Messages []conversation.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ctxResp))
	require.Len(t, ctxResp.Messages, 1)
	assert.Equal(t, "done", ctxResp.Messages[0].Content)

	rec = call(t, manager, HandleContext, http.MethodGet, "/?max=zero", id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, manager, HandlePrompt, http.MethodGet, "/", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var promptResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &promptResp))
	assert.Contains(t, promptResp["prompt"], "## Conversation Context")
	assert.Contains(t, promptResp["prompt"], "## Project Evolution")
	assert.Contains(t, promptResp["prompt"], "## User Preferences")

	rec = call(t, manager, HandleStats, http.MethodGet, "/", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats conversation.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)
	assert.Equal(t, 1, stats.TotalEdits)
}
