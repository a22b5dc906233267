package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/forgeapp/forge/internal/api/v1/handlers/conversations"
	"github.com/forgeapp/forge/internal/api/v1/handlers/generate"
	"github.com/forgeapp/forge/internal/api/v1/handlers/presets"
	"github.com/forgeapp/forge/internal/api/v1/handlers/websocket"
	v1mware "github.com/forgeapp/forge/internal/api/v1/middleware"
	"github.com/forgeapp/forge/internal/services"
	"github.com/forgeapp/forge/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts the operational endpoints and the v1 API on router.
func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.Use(v1mware.Metrics)
	router.Use(v1mware.RateLimit("global"))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		HandleHealth(services, w, r)
	}).Methods("GET")

	RegisterV1Routes(router, services)
}

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()

	// Public v1 routes (no session required)
	v1publicRouter := v1.NewRoute().Subrouter()
	v1publicRouter.HandleFunc("/models", presets.HandleModels).Methods("GET")
	v1publicRouter.HandleFunc("/config/validate", presets.HandleValidate).Methods("POST")

	// Session v1 routes
	v1sessionRouter := v1.NewRoute().Subrouter()
	v1sessionRouter.Use(v1mware.Session(services.GetSessionService()))

	// Generation streams
	generationService := services.GetGenerationService()
	v1sessionRouter.Handle("/generate", v1mware.RateLimit("generate")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		generate.HandleGenerate(generationService, w, r)
	}))).Methods("POST")
	v1sessionRouter.Handle("/generate/description", v1mware.RateLimit("describe")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		generate.HandleDescription(generationService, services.GetDescriptionService(), w, r)
	}))).Methods("POST")
	v1sessionRouter.Handle("/generate/follow-up", v1mware.RateLimit("follow_up")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		generate.HandleFollowUp(generationService, services.GetFollowUpService(), w, r)
	}))).Methods("POST")

	wsHandler := websocket.NewHandler(
		generationService,
		services.GetDescriptionService(),
		services.GetFollowUpService(),
		services.GetConnectionManager(),
	)
	v1sessionRouter.Handle("/ws", v1mware.RateLimit("websocket")(wsHandler)).Methods("GET")

	// Presets, namespaced by session
	presetService := services.GetPresetService()
	v1presetRouter := v1sessionRouter.PathPrefix("/presets").Subrouter()
	v1presetRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		presets.HandleList(presetService, w, r)
	}).Methods("GET")
	v1presetRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		presets.HandleCreate(presetService, w, r)
	}).Methods("POST")
	v1presetRouter.HandleFunc("/default", func(w http.ResponseWriter, r *http.Request) {
		presets.HandleDefault(presetService, w, r)
	}).Methods("GET")
	v1presetRouter.HandleFunc("/{id}", func(w http.ResponseWriter, r *http.Request) {
		presets.HandleUpdate(presetService, w, r)
	}).Methods("PUT")
	v1presetRouter.HandleFunc("/{id}", func(w http.ResponseWriter, r *http.Request) {
		presets.HandleDelete(presetService, w, r)
	}).Methods("DELETE")

	// Conversations
	manager := services.GetConversationManager()
	v1conversationRouter := v1sessionRouter.PathPrefix("/conversations").Subrouter()
	v1conversationRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleCreate(manager, w, r)
	}).Methods("POST")
	v1conversationRouter.HandleFunc("/{id}", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleGet(manager, w, r)
	}).Methods("GET")
	v1conversationRouter.HandleFunc("/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleAddMessage(manager, w, r)
	}).Methods("POST")
	v1conversationRouter.HandleFunc("/{id}/context", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleContext(manager, w, r)
	}).Methods("GET")
	v1conversationRouter.HandleFunc("/{id}/prompt", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandlePrompt(manager, w, r)
	}).Methods("GET")
	v1conversationRouter.HandleFunc("/{id}/changes", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleTrackChange(manager, w, r)
	}).Methods("POST")
	v1conversationRouter.HandleFunc("/{id}/preferences", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandlePreferences(manager, w, r)
	}).Methods("PATCH")
	v1conversationRouter.HandleFunc("/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		conversations.HandleStats(manager, w, r)
	}).Methods("GET")
}

// HandleHealth reports liveness, and readiness of Redis when it is in use.
func HandleHealth(services *services.Services, w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := services.Ready(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		httpext.JsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpext.JsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
