package aiconfig

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/forgeapp/forge/internal/infrastructure/redis"
	"github.com/forgeapp/forge/pkg/logger"
)

// Service is the preset store. Storage failures are logged and never
// surface to callers: reads degrade to the built-in presets, writes to no-ops.
type Service struct {
	store PresetStore
	now   func() time.Time

	// serialises read-modify-write cycles per process
	mu sync.Mutex
}

func NewService(redisService *redis.Service) *Service {
	logger.Info(logger.PRESET, "Initialising preset service")

	var store PresetStore
	if redisService != nil {
		logger.Info(logger.PRESET, "Using Redis for preset storage")
		store = NewRedisStore(redisService)
	} else {
		logger.Info(logger.PRESET, "Using in-memory preset storage")
		store = NewMemoryStore()
	}

	return NewServiceWithStore(store)
}

func NewServiceWithStore(store PresetStore) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns the owner's presets, or the built-ins when nothing valid is stored.
func (s *Service) List(ctx context.Context, owner string) []Preset {
	presets, err := s.store.Load(ctx, owner)
	if err != nil {
		if !errors.Is(err, ErrNoPresets) {
			logger.Error(logger.PRESET, "Failed to load presets for %s: %v", owner, err)
		}
		return DefaultPresets(s.now())
	}
	return presets
}

func (s *Service) save(ctx context.Context, owner string, presets []Preset) {
	if err := s.store.Save(ctx, owner, presets); err != nil {
		logger.Error(logger.PRESET, "Failed to save presets for %s: %v", owner, err)
	}
}

func (s *Service) Create(ctx context.Context, owner, name, description string, config ModelConfig, modelID string) Preset {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset := NewPreset(name, description, config, modelID, s.now())
	s.save(ctx, owner, append(s.List(ctx, owner), preset))

	logger.Info(logger.PRESET, "Created preset %s for %s", preset.ID, owner)
	return preset
}

// Update returns the updated preset, or nil if id is unknown.
func (s *Service) Update(ctx context.Context, owner, id string, update PresetUpdate) *Preset {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, found := UpdatePreset(s.List(ctx, owner), id, update, s.now())
	if !found {
		return nil
	}
	s.save(ctx, owner, presets)

	for i := range presets {
		if presets[i].ID == id {
			return &presets[i]
		}
	}
	return nil
}

// Delete reports whether id existed.
func (s *Service) Delete(ctx context.Context, owner, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets := s.List(ctx, owner)
	remaining := DeletePreset(presets, id)
	if len(remaining) == len(presets) {
		return false
	}
	s.save(ctx, owner, remaining)

	logger.Info(logger.PRESET, "Deleted preset %s for %s", id, owner)
	return true
}

func (s *Service) Default(ctx context.Context, owner, modelID string) *Preset {
	return ResolveDefault(s.List(ctx, owner), modelID)
}
