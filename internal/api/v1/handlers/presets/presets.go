package presets

import (
	"encoding/json"
	"net/http"

	v1mware "github.com/forgeapp/forge/internal/api/v1/middleware"
	"github.com/forgeapp/forge/internal/services/aiconfig"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ModelInfo struct {
	ID           string                `json:"id"`
	Capabilities aiconfig.Capabilities `json:"capabilities"`
}

type ModelsResponse struct {
	Models   []ModelInfo `json:"models"`
	Fallback string      `json:"fallback"`
}

type ValidateRequest struct {
	Model    string               `json:"model"`
	AIConfig aiconfig.ModelConfig `json:"aiConfig"`
}

type ValidateResponse struct {
	Valid  bool                 `json:"valid"`
	Errors []string             `json:"errors"`
	Config aiconfig.ModelConfig `json:"config"`
}

type CreateRequest struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description"`
	Config      aiconfig.ModelConfig `json:"config"`
	ModelID     string               `json:"modelId"`
}

// HandleModels lists every model with a capability entry.
func HandleModels(w http.ResponseWriter, r *http.Request) {
	ids := aiconfig.Models()
	resp := ModelsResponse{
		Models:   make([]ModelInfo, 0, len(ids)),
		Fallback: aiconfig.FallbackModel,
	}
	for _, id := range ids {
		resp.Models = append(resp.Models, ModelInfo{ID: id, Capabilities: aiconfig.GetCapabilities(id)})
	}
	httpext.JsonResponse(w, http.StatusOK, resp)
}

// HandleValidate checks a config against a model and returns the config
// that would actually be sent: model defaults, then the given values,
// minus the fields the model ignores.
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		req.Model = aiconfig.FallbackModel
	}

	caps := aiconfig.GetCapabilities(req.Model)
	violations := aiconfig.Validate(req.AIConfig, req.Model)

	httpext.JsonResponse(w, http.StatusOK, ValidateResponse{
		Valid:  len(violations) == 0,
		Errors: violations,
		Config: aiconfig.Supported(aiconfig.Merge(caps.DefaultConfig, req.AIConfig), caps),
	})
}

func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := v1mware.SessionID(r.Context())
	if id == "" {
		log.Warn().Msg("Preset request without a session")
		httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

func HandleList(presetService *aiconfig.Service, w http.ResponseWriter, r *http.Request) {
	sessionID, ok := owner(w, r)
	if !ok {
		return
	}
	httpext.JsonResponse(w, http.StatusOK, map[string]interface{}{
		"presets": presetService.List(r.Context(), sessionID),
	})
}

func HandleCreate(presetService *aiconfig.Service, w http.ResponseWriter, r *http.Request) {
	sessionID, ok := owner(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Preset validation failed")
		httpext.JsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	preset := presetService.Create(r.Context(), sessionID, req.Name, req.Description, req.Config, req.ModelID)
	httpext.JsonResponse(w, http.StatusCreated, preset)
}

func HandleUpdate(presetService *aiconfig.Service, w http.ResponseWriter, r *http.Request) {
	sessionID, ok := owner(w, r)
	if !ok {
		return
	}

	var update aiconfig.PresetUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	preset := presetService.Update(r.Context(), sessionID, mux.Vars(r)["id"], update)
	if preset == nil {
		httpext.JsonError(w, "Preset not found", http.StatusNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, preset)
}

func HandleDelete(presetService *aiconfig.Service, w http.ResponseWriter, r *http.Request) {
	sessionID, ok := owner(w, r)
	if !ok {
		return
	}

	if !presetService.Delete(r.Context(), sessionID, mux.Vars(r)["id"]) {
		httpext.JsonError(w, "Preset not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDefault resolves the default preset for the model in ?model=.
func HandleDefault(presetService *aiconfig.Service, w http.ResponseWriter, r *http.Request) {
	sessionID, ok := owner(w, r)
	if !ok {
		return
	}

	modelID := r.URL.Query().Get("model")
	if modelID == "" {
		modelID = aiconfig.AllModels
	}

	preset := presetService.Default(r.Context(), sessionID, modelID)
	if preset == nil {
		httpext.JsonError(w, "No default preset", http.StatusNotFound)
		return
	}
	httpext.JsonResponse(w, http.StatusOK, preset)
}
