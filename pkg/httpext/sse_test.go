package httpext

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noFlushWriter struct {
	header http.Header
}

func (w *noFlushWriter) Header() http.Header { return w.header }
func (w *noFlushWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *noFlushWriter) WriteHeader(int) {}

func TestEventWriter(t *testing.T) {
	w := httptest.NewRecorder()

	ew, err := NewEventWriter(w)
	require.NoError(t, err)

	require.NoError(t, ew.WriteJSON(map[string]string{"type": "chunk", "content": "Hi"}))
	require.NoError(t, ew.WriteJSON(map[string]string{"type": "complete"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))
	assert.Equal(t,
		"data: {\"content\":\"Hi\",\"type\":\"chunk\"}\n\ndata: {\"type\":\"complete\"}\n\n",
		w.Body.String())
	assert.True(t, w.Flushed)
}

func TestEventWriterRequiresFlusher(t *testing.T) {
	_, err := NewEventWriter(&noFlushWriter{header: http.Header{}})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}
