package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgeapp/forge/internal/api/v1/handlers"
	v1mware "github.com/forgeapp/forge/internal/api/v1/middleware"
	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/services"
	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/session"
	"github.com/forgeapp/forge/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close services")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepConversations(ctx, svcs.GetConversationManager(), config.GetConversationConfig())
	go sweepRateLimits(ctx, time.Minute)
	go sweepSessions(ctx, svcs.GetSessionService(), time.Minute)

	serverConfig := config.GetServerConfig()
	server := &http.Server{
		Addr:              serverConfig.Addr,
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: serverConfig.ReadHeaderTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown did not complete cleanly")
	}
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	handlers.RegisterRoutes(r, svcs)
	return r
}

// sweepConversations drops idle conversations until ctx is done.
func sweepConversations(ctx context.Context, manager *conversation.Manager, cfg config.ConversationConfig) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := manager.Cleanup(cfg.MaxAge)
			log.Debug().Int("removed", removed).Int("active", manager.Count()).Msg("Conversation sweep finished")
		}
	}
}

func sweepRateLimits(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if swept := v1mware.SweepRateLimits(); swept > 0 {
				log.Debug().Int("clients", swept).Msg("Rate limit sweep finished")
			}
		}
	}
}

// sweepSessions evicts expired in-memory sessions until ctx is done.
func sweepSessions(ctx context.Context, sessionService *session.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessionService.Sweep(); removed > 0 {
				log.Debug().Int("sessions", removed).Msg("Session sweep finished")
			}
		}
	}
}
