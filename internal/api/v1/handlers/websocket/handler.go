package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/forgeapp/forge/internal/api/v1/handlers/generate"
	v1mware "github.com/forgeapp/forge/internal/api/v1/middleware"
	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/connections"
	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/description"
	"github.com/forgeapp/forge/internal/services/followup"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	ActionGenerate = "generate"
	ActionDescribe = "describe"
	ActionFollowUp = "follow-up"
	ActionCancel   = "cancel"

	maxFrameSize = 1 << 20
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request is a client frame. ID names the stream its events are tagged
// with; one is generated when omitted. A cancel frame stops stream ID.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Frame is a server frame. Data holds the same payload the SSE endpoints
// send for the event.
type Frame struct {
	StreamID string      `json:"streamId"`
	Data     interface{} `json:"data"`
}

// Handler streams generations over a WebSocket. Several streams may run
// on one connection at once.
type Handler struct {
	generation  *generation.Service
	description *description.Service
	followUp    *followup.Service
	connections *connections.Manager
	upgrader    websocket.Upgrader
}

func NewHandler(generationService *generation.Service, descriptionService *description.Service, followUpService *followup.Service, manager *connections.Manager) *Handler {
	allowed := config.GetAllowedOrigins()
	return &Handler{
		generation:  generationService,
		description: descriptionService,
		followUp:    followUpService,
		connections: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return slices.Contains(allowed, r.Header.Get("Origin"))
			},
		},
	}
}

// client is the state of one open connection.
type client struct {
	h    *Handler
	conn *connections.Connection
	ctx  context.Context

	mu      sync.Mutex
	streams map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer wsConn.Close()

	conn := h.connections.AddConnection(wsConn, v1mware.SessionID(r.Context()))
	defer h.connections.RemoveConnection(wsConn)

	log.Info().
		Str("connection_id", conn.ID).
		Str("client_ip", r.RemoteAddr).
		Int("connections", h.connections.GetConnectionCount()).
		Msg("WebSocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	c := &client{
		h:       h,
		conn:    conn,
		ctx:     ctx,
		streams: make(map[string]context.CancelFunc),
	}
	defer func() {
		cancel()
		c.wg.Wait()
		log.Info().Str("connection_id", conn.ID).Msg("WebSocket disconnected")
	}()

	timeouts := h.connections.GetTimeouts()
	wsConn.SetReadLimit(maxFrameSize)
	_ = wsConn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	go c.keepAlive(timeouts.PingPeriod)

	for {
		var req Request
		if err := wsConn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connection_id", conn.ID).Msg("Unexpected WebSocket closure")
			}
			return
		}
		c.dispatch(req)
	}
}

func (c *client) keepAlive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				log.Debug().Err(err).Str("connection_id", c.conn.ID).Msg("WebSocket ping failed")
				return
			}
		}
	}
}

func (c *client) send(streamID string, payload interface{}) error {
	return c.conn.WriteJSON(Frame{StreamID: streamID, Data: payload})
}

func (c *client) reject(streamID string, d generate.Dialect, message string) {
	if err := c.send(streamID, generate.Encode(models.Error{Message: message}, d)); err != nil {
		log.Debug().Err(err).Str("connection_id", c.conn.ID).Msg("Failed to send WebSocket error")
	}
}

func (c *client) dispatch(req Request) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	if req.Action == ActionCancel {
		c.mu.Lock()
		cancel, ok := c.streams[req.ID]
		c.mu.Unlock()
		if ok {
			cancel()
		}
		return
	}

	call, d, err := c.prepare(req)
	if err != nil {
		log.Warn().Err(err).Str("action", req.Action).Str("stream_id", req.ID).Msg("Rejected WebSocket request")
		c.reject(req.ID, d, err.Error())
		return
	}

	c.mu.Lock()
	if _, running := c.streams[req.ID]; running {
		c.mu.Unlock()
		c.reject(req.ID, d, "stream id already in use")
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.streams[req.ID] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.relay(ctx, cancel, req.ID, call, d)
}

// prepare decodes the payload for req.Action and builds its call. Errors
// carry the message sent back to the client.
func (c *client) prepare(req Request) (generation.Call, generate.Dialect, error) {
	switch req.Action {
	case ActionGenerate:
		var payload models.GenerateRequest
		if err := decode(req.Payload, &payload); err != nil {
			return generation.Call{}, generate.StandardDialect, errors.New("prompt is required")
		}
		call, err := c.h.generation.PrepareGenerate(payload)
		return call, generate.StandardDialect, err

	case ActionDescribe:
		var payload models.DescriptionRequest
		if err := decode(req.Payload, &payload); err != nil {
			return generation.Call{}, generate.DescriptionDialect, errors.New("App description is required")
		}
		call, err := c.h.description.Prepare(payload)
		return call, generate.DescriptionDialect, err

	case ActionFollowUp:
		var payload models.FollowUpRequest
		if err := decode(req.Payload, &payload); err != nil {
			return generation.Call{}, generate.StandardDialect, errors.New("followUpInstruction and conversationId are required")
		}
		call, err := c.h.followUp.Prepare(c.ctx, payload)
		if errors.Is(err, conversation.ErrNotFound) {
			return generation.Call{}, generate.StandardDialect, errors.New("Conversation not found")
		}
		return call, generate.StandardDialect, err

	default:
		return generation.Call{}, generate.StandardDialect, errors.New("unknown action: " + req.Action)
	}
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

func (c *client) relay(ctx context.Context, cancel context.CancelFunc, streamID string, call generation.Call, d generate.Dialect) {
	defer c.wg.Done()
	defer func() {
		cancel()
		c.mu.Lock()
		delete(c.streams, streamID)
		c.mu.Unlock()
	}()

	events := c.h.generation.Stream(ctx, call)
	for ev := range events {
		if err := c.send(streamID, generate.Encode(ev, d)); err != nil {
			log.Warn().Err(err).Str("stream_id", streamID).Msg("Failed to write WebSocket event, cancelling stream")
			cancel()
			for range events {
			}
			return
		}
	}
}
