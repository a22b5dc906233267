package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/connections"
	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/infrastructure/llm/llmtest"
	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/description"
	"github.com/forgeapp/forge/internal/services/followup"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/provider"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager       *connections.Manager
	conversations *conversation.Manager
	conn          *websocket.Conn
}

func setup(t *testing.T, gen llm.Generator) *fixture {
	t.Helper()

	adapter := provider.NewAdapterWithGenerators(map[llm.Vendor]llm.Generator{
		llm.VendorAnthropic: gen,
		llm.VendorOpenAI:    gen,
		llm.VendorGoogle:    gen,
		llm.VendorGroq:      gen,
	})
	generationService := generation.NewService(adapter, config.GenerationConfig{})
	conversations := conversation.NewManager()
	manager := connections.NewManager(connections.DefaultTimeouts)

	handler := NewHandler(
		generationService,
		description.NewService(generationService),
		followup.NewService(generationService, conversations, nil),
		manager,
	)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &fixture{manager: manager, conversations: conversations, conn: conn}
}

func (f *fixture) request(t *testing.T, req interface{}) {
	t.Helper()
	require.NoError(t, f.conn.WriteJSON(req))
}

type received struct {
	StreamID string                 `json:"streamId"`
	Data     map[string]interface{} `json:"data"`
}

// readUntilTerminal collects frames up to and including the first
// complete or error.
func (f *fixture) readUntilTerminal(t *testing.T) []received {
	t.Helper()
	var frames []received
	for {
		require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var frame received
		require.NoError(t, f.conn.ReadJSON(&frame))
		frames = append(frames, frame)
		if typ := frame.Data["type"]; typ == "complete" || typ == "error" {
			return frames
		}
	}
}

func TestGenerateOverWebSocket(t *testing.T) {
	f := setup(t, &llmtest.Generator{Parts: []string{"a", "b"}, FinishReason: "stop"})

	f.request(t, map[string]interface{}{
		"id":      "s1",
		"action":  ActionGenerate,
		"payload": map[string]string{"prompt": "hello"},
	})

	frames := f.readUntilTerminal(t)
	require.Len(t, frames, 3)
	for _, frame := range frames {
		assert.Equal(t, "s1", frame.StreamID)
	}
	assert.Equal(t, "chunk", frames[0].Data["type"])
	assert.Equal(t, "ab", frames[1].Data["fullContent"])
	assert.Equal(t, "ab", frames[2].Data["content"])
	assert.Equal(t, 1, f.manager.GetConnectionCount())
}

func TestDescribeUsesDescriptionDialect(t *testing.T) {
	f := setup(t, &llmtest.Generator{Parts: []string{"x"}})

	f.request(t, map[string]interface{}{
		"action":  ActionDescribe,
		"payload": map[string]string{"description": "weather dashboard"},
	})

	frames := f.readUntilTerminal(t)
	assert.NotEmpty(t, frames[0].StreamID)
	assert.Equal(t, "status", frames[0].Data["type"])
	assert.Equal(t, "stream", frames[len(frames)-2].Data["type"])
	assert.Equal(t, "weather", frames[len(frames)-1].Data["appType"])
}

func TestRejectedRequests(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		key     string
		message string
	}{
		{
			name:    "Missing prompt",
			request: Request{ID: "r1", Action: ActionGenerate, Payload: json.RawMessage(`{"model":"openai/gpt-5"}`)},
			key:     "error",
			message: "prompt is required",
		},
		{
			name:    "Missing description",
			request: Request{ID: "r2", Action: ActionDescribe, Payload: json.RawMessage(`{}`)},
			key:     "message",
			message: "App description is required",
		},
		{
			name:    "Unknown conversation",
			request: Request{ID: "r3", Action: ActionFollowUp, Payload: json.RawMessage(`{"followUpInstruction":"x","conversationId":"conv-none"}`)},
			key:     "error",
			message: "Conversation not found",
		},
		{
			name:    "Unknown action",
			request: Request{ID: "r4", Action: "explode"},
			key:     "error",
			message: "unknown action: explode",
		},
	}

	f := setup(t, &llmtest.Generator{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.request(t, tt.request)

			frames := f.readUntilTerminal(t)
			require.Len(t, frames, 1)
			assert.Equal(t, tt.request.ID, frames[0].StreamID)
			assert.Equal(t, "error", frames[0].Data["type"])
			assert.Equal(t, tt.message, frames[0].Data[tt.key])
		})
	}
}

func TestCancelStopsStream(t *testing.T) {
	gen := &llmtest.Generator{Parts: []string{"first"}, Block: true}
	f := setup(t, gen)

	f.request(t, Request{ID: "long", Action: ActionGenerate, Payload: json.RawMessage(`{"prompt":"p"}`)})

	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame received
	require.NoError(t, f.conn.ReadJSON(&frame))
	assert.Equal(t, "chunk", frame.Data["type"])

	f.request(t, Request{ID: "long", Action: ActionCancel})

	assert.Eventually(t, func() bool { return gen.Closed() == 1 }, 5*time.Second, 10*time.Millisecond)

	// The connection stays usable after a cancel.
	f.request(t, Request{ID: "next", Action: ActionGenerate, Payload: json.RawMessage(`{"prompt":"p"}`)})
	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, f.conn.ReadJSON(&frame))
	assert.Equal(t, "next", frame.StreamID)
}
