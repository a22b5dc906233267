package generate

import (
	"context"
	"errors"
	"net/http"

	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// Dialect is the wire vocabulary of one endpoint. The description endpoint
// predates the others and names its chunks and error text differently.
type Dialect struct {
	ChunkType string
	ErrorKey  string
}

var (
	StandardDialect    = Dialect{ChunkType: "chunk", ErrorKey: "error"}
	DescriptionDialect = Dialect{ChunkType: "stream", ErrorKey: "message"}
)

type chunkFrame struct {
	Type string `json:"type"`
	models.Chunk
}

type statusFrame struct {
	Type string `json:"type"`
	models.Status
}

type completeFrame struct {
	Type string `json:"type"`
	models.Complete
}

// Encode converts ev into the JSON payload sent to clients. Every payload
// carries a "type" discriminator.
func Encode(ev models.Event, d Dialect) interface{} {
	switch e := ev.(type) {
	case models.Chunk:
		return chunkFrame{Type: d.ChunkType, Chunk: e}
	case models.Status:
		return statusFrame{Type: "status", Status: e}
	case models.Complete:
		return completeFrame{Type: "complete", Complete: e}
	case models.Error:
		return map[string]string{"type": "error", d.ErrorKey: e.Message}
	default:
		return nil
	}
}

// Streamer runs prepared generation calls.
type Streamer interface {
	Stream(ctx context.Context, call generation.Call) <-chan models.Event
}

// serveStream commits an event-stream response and relays the events of
// call until the terminal one. When the client stops reading the
// generation is cancelled and its remaining events are discarded.
func serveStream(streamer Streamer, w http.ResponseWriter, r *http.Request, call generation.Call, d Dialect) {
	ew, err := httpext.NewEventWriter(w)
	if err != nil {
		log.Error().Err(err).Msg("Cannot stream generation response")
		httpext.JsonError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := streamer.Stream(ctx, call)
	for ev := range events {
		if err := ew.WriteJSON(Encode(ev, d)); err != nil {
			log.Warn().Err(err).Str("kind", call.Kind).Msg("Client stopped reading generation stream")
			cancel()
			for range events {
			}
			return
		}
	}
}

// prepareError writes the response for a call that could not be prepared.
// Nothing has been streamed yet, so the status code still applies.
func prepareError(w http.ResponseWriter, err error) {
	var validationErr *generation.ValidationError
	if errors.As(err, &validationErr) {
		log.Warn().Err(err).Msg("Rejected out-of-range model configuration")
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:  "Invalid model configuration",
			Errors: validationErr.Violations,
		})
		return
	}

	log.Error().Err(err).Msg("Failed to prepare generation")
	httpext.JsonError(w, err.Error(), http.StatusInternalServerError)
}
