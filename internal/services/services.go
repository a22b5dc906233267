package services

import (
	"context"
	"sync"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/internal/connections"
	"github.com/forgeapp/forge/internal/infrastructure/redis"
	"github.com/forgeapp/forge/internal/infrastructure/sandbox"
	"github.com/forgeapp/forge/internal/services/aiconfig"
	"github.com/forgeapp/forge/internal/services/conversation"
	"github.com/forgeapp/forge/internal/services/description"
	"github.com/forgeapp/forge/internal/services/followup"
	"github.com/forgeapp/forge/internal/services/generation"
	"github.com/forgeapp/forge/internal/services/provider"
	"github.com/forgeapp/forge/internal/services/session"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	redisService        *redis.Service
	sessionService      *session.Service
	presetService       *aiconfig.Service
	conversationManager *conversation.Manager
	providerAdapter     *provider.Adapter
	generationService   *generation.Service
	descriptionService  *description.Service
	followUpService     *followup.Service
	sandboxClient       *sandbox.Client
	connectionManager   *connections.Manager
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Bool("enabled", redisService != nil).Msg("Initializing Redis service")

	// Initialize session and preset stores with optional Redis
	config.WarnDefaultSessionSecret()
	sessionService := session.NewService(redisService)
	presetService := aiconfig.NewService(redisService)
	log.Info().Msg("Initializing session and preset services")

	conversationManager := conversation.NewManager()

	// Initialize provider clients and the generation pipeline
	providerAdapter := provider.NewAdapter(config.GetProviderConfig())
	generationService := generation.NewService(providerAdapter, config.GetGenerationConfig())
	descriptionService := description.NewService(generationService)

	sandboxClient := sandbox.NewClient()
	followUpService := followup.NewService(generationService, conversationManager, sandboxClient)
	log.Info().Msg("Initializing generation services")

	connectionManager := connections.NewManager(connections.DefaultTimeouts)

	log.Info().Msg("All services initialized successfully")

	return &Services{
		redisService:        redisService,
		sessionService:      sessionService,
		presetService:       presetService,
		conversationManager: conversationManager,
		providerAdapter:     providerAdapter,
		generationService:   generationService,
		descriptionService:  descriptionService,
		followUpService:     followUpService,
		sandboxClient:       sandboxClient,
		connectionManager:   connectionManager,
	}, nil
}

// Close releases the Redis connection, if any
func (s *Services) Close() error {
	if s.redisService == nil {
		return nil
	}
	return s.redisService.Close()
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetPresetService returns the preset store
func (s *Services) GetPresetService() *aiconfig.Service {
	return s.presetService
}

// GetConversationManager returns the conversation registry
func (s *Services) GetConversationManager() *conversation.Manager {
	return s.conversationManager
}

// GetGenerationService returns the streaming generation service
func (s *Services) GetGenerationService() *generation.Service {
	return s.generationService
}

// GetDescriptionService returns the generate-from-description service
func (s *Services) GetDescriptionService() *description.Service {
	return s.descriptionService
}

// GetFollowUpService returns the follow-up service
func (s *Services) GetFollowUpService() *followup.Service {
	return s.followUpService
}

// GetConnectionManager returns the WebSocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// Ready reports whether the optional backing stores are reachable
func (s *Services) Ready(ctx context.Context) error {
	if s.redisService == nil {
		return nil
	}
	return s.redisService.Ping(ctx)
}
