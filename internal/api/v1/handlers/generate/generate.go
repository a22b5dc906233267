package generate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/description"
	"github.com/forgeapp/forge/internal/services/followup"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// HandleGenerate streams a fresh generation for a prompt.
func HandleGenerate(generationService *generation.Service, w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := decode(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Generate request validation failed")
		httpext.JsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	call, err := generationService.PrepareGenerate(req)
	if err != nil {
		prepareError(w, err)
		return
	}

	log.Info().
		Str("model", call.Model.ModelID).
		Str("vendor", string(call.Model.Vendor)).
		Str("client_ip", r.RemoteAddr).
		Msg("Starting generation stream")

	serveStream(generationService, w, r, call, StandardDialect)
}

// HandleDescription streams a complete app generated from a free-text
// description, with progress statuses first.
func HandleDescription(generationService *generation.Service, descriptionService *description.Service, w http.ResponseWriter, r *http.Request) {
	var req models.DescriptionRequest
	if err := decode(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonResponse(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Description request validation failed")
		httpext.JsonResponse(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "App description is required",
		})
		return
	}

	call, err := descriptionService.Prepare(req)
	if err != nil {
		prepareError(w, err)
		return
	}

	log.Info().
		Str("model", call.Model.ModelID).
		Str("style", req.Style).
		Str("client_ip", r.RemoteAddr).
		Msg("Starting description stream")

	serveStream(generationService, w, r, call, DescriptionDialect)
}

// HandleFollowUp streams an edit of the code already in a conversation.
func HandleFollowUp(generationService *generation.Service, followUpService *followup.Service, w http.ResponseWriter, r *http.Request) {
	var req models.FollowUpRequest
	if err := decode(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Follow-up request validation failed")
		httpext.JsonError(w, "followUpInstruction and conversationId are required", http.StatusBadRequest)
		return
	}

	call, err := followUpService.Prepare(r.Context(), req)
	if errors.Is(err, conversation.ErrNotFound) {
		log.Warn().Str("conversation_id", req.ConversationID).Msg("Follow-up for unknown conversation")
		httpext.JsonError(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		prepareError(w, err)
		return
	}

	log.Info().
		Str("model", call.Model.ModelID).
		Str("conversation_id", req.ConversationID).
		Str("client_ip", r.RemoteAddr).
		Msg("Starting follow-up stream")

	serveStream(generationService, w, r, call, StandardDialect)
}
