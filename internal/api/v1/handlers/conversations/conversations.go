package conversations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type AddMessageRequest struct {
	Role     conversation.Role      `json:"role" validate:"required,oneof=user assistant"`
	Content  string                 `json:"content"`
	Metadata *conversation.Metadata `json:"metadata,omitempty"`
}

type TrackChangeRequest struct {
	Description   string   `json:"description" validate:"required"`
	FilesAffected []string `json:"filesAffected"`
}

func conversationID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// writeManagerError maps manager failures onto status codes.
func writeManagerError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, conversation.ErrNotFound) {
		log.Warn().Str("conversation_id", id).Msg("Conversation not found")
		httpext.JsonError(w, "Conversation not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Str("conversation_id", id).Msg("Conversation update failed")
	httpext.JsonError(w, "Conversation update failed", http.StatusInternalServerError)
}

func HandleCreate(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	conv := manager.CreateConversation()
	log.Info().Str("conversation_id", conv.ConversationID).Msg("Conversation created")
	httpext.JsonResponse(w, http.StatusCreated, conv)
}

func HandleGet(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	conv, ok := manager.GetConversation(id)
	if !ok {
		writeManagerError(w, id, conversation.ErrNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, conv)
}

func HandleAddMessage(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	var req AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Message validation failed")
		httpext.JsonError(w, "role must be user or assistant", http.StatusBadRequest)
		return
	}

	id := conversationID(r)
	msg, err := manager.AddMessage(id, req.Role, req.Content, req.Metadata)
	if err != nil {
		writeManagerError(w, id, err)
		return
	}
	httpext.JsonResponse(w, http.StatusCreated, msg)
}

// HandleContext returns the trailing messages, ?max= of them (default 10).
func HandleContext(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if !manager.Exists(id) {
		writeManagerError(w, id, conversation.ErrNotFound)
		return
	}

	max := conversation.DefaultContextSize
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpext.JsonError(w, "max must be a positive integer", http.StatusBadRequest)
			return
		}
		max = parsed
	}

	httpext.JsonResponse(w, http.StatusOK, map[string]interface{}{
		"messages": manager.GetRecentContext(id, max),
	})
}

func HandlePrompt(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if !manager.Exists(id) {
		writeManagerError(w, id, conversation.ErrNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, map[string]string{
		"prompt": manager.BuildContextPrompt(id),
	})
}

func HandleTrackChange(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	var req TrackChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Change validation failed")
		httpext.JsonError(w, "description is required", http.StatusBadRequest)
		return
	}

	id := conversationID(r)
	if err := manager.TrackMajorChange(id, req.Description, req.FilesAffected); err != nil {
		writeManagerError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func HandlePreferences(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	var update conversation.PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	id := conversationID(r)
	if err := manager.UpdateUserPreferences(id, update); err != nil {
		writeManagerError(w, id, err)
		return
	}

	conv, _ := manager.GetConversation(id)
	httpext.JsonResponse(w, http.StatusOK, conv.Context.UserPreferences)
}

func HandleStats(manager *conversation.Manager, w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	stats := manager.GetStats(id)
	if stats == nil {
		writeManagerError(w, id, conversation.ErrNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, stats)
}
