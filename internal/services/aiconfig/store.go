package aiconfig

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/forgeapp/forge/internal/infrastructure/redis"
)

// ErrNoPresets is returned by a store that holds nothing for an owner.
var ErrNoPresets = errors.New("no presets stored")

// PresetStore persists one preset list per owner.
type PresetStore interface {
	Load(ctx context.Context, owner string) ([]Preset, error)
	Save(ctx context.Context, owner string, presets []Preset) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu      sync.RWMutex
	presets map[string][]byte
}

func NewRedisStore(redisService *redis.Service) *RedisStore {
	return &RedisStore{redisService: redisService}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		presets: make(map[string][]byte),
	}
}

func presetKey(owner string) string {
	return "Presets:" + owner
}

// Redis Store implementation
func (rs *RedisStore) Load(ctx context.Context, owner string) ([]Preset, error) {
	data, err := rs.redisService.Get(ctx, presetKey(owner))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNoPresets
	}
	if err != nil {
		return nil, err
	}
	return decodePresets([]byte(data))
}

func (rs *RedisStore) Save(ctx context.Context, owner string, presets []Preset) error {
	data, err := json.Marshal(presets)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, presetKey(owner), string(data), 0)
}

// Memory Store implementation. Lists are kept serialised so callers never
// share slices with the store.
func (ms *MemoryStore) Load(ctx context.Context, owner string) ([]Preset, error) {
	ms.mu.RLock()
	data, exists := ms.presets[owner]
	ms.mu.RUnlock()

	if !exists {
		return nil, ErrNoPresets
	}
	return decodePresets(data)
}

func (ms *MemoryStore) Save(ctx context.Context, owner string, presets []Preset) error {
	data, err := json.Marshal(presets)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.presets[owner] = data
	return nil
}

func decodePresets(data []byte) ([]Preset, error) {
	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}
