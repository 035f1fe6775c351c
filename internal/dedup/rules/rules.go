// Package rules stores the default identity policy used by dedup runs that
// are not scoped to a product.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"leadhub/internal/dedup/models"
)

// Key is where the Redis store keeps the rules document.
const Key = "leadhub:dedup:rules"

// Memory keeps the rules in process. It starts with every identifier enabled.
type Memory struct {
	mu  sync.RWMutex
	cfg models.Config
}

func NewMemory() *Memory {
	return &Memory{cfg: models.DefaultConfig()}
}

func (m *Memory) Get(_ context.Context) (models.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg, nil
}

func (m *Memory) Put(_ context.Context, cfg models.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	return nil
}

// Redis keeps the rules as a JSON document so every instance shares them.
// A missing document reads as the default policy.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context) (models.Config, error) {
	raw, err := r.client.Get(ctx, Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultConfig(), nil
	}
	if err != nil {
		return models.Config{}, fmt.Errorf("get dedup rules: %w", err)
	}
	var cfg models.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return models.Config{}, fmt.Errorf("decode dedup rules: %w", err)
	}
	return cfg, nil
}

func (r *Redis) Put(ctx context.Context, cfg models.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode dedup rules: %w", err)
	}
	if err := r.client.Set(ctx, Key, raw, 0).Err(); err != nil {
		return fmt.Errorf("put dedup rules: %w", err)
	}
	return nil
}
