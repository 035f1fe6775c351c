// Package lock serializes dedup runs. Redis backs the lock across
// instances; Memory covers single-process runs and tests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"leadhub/pkg/platform/sentinel"
)

// DedupKey is the single lock taken by every dedup and consolidation run.
const DedupKey = "leadhub:lock:dedup"

// Handle identifies a held lock. Only the holder of the token can release it.
type Handle struct {
	Key   string
	Token string
}

// releaseScript deletes the key only while it still carries the caller's
// token, so an expired lock re-taken by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lock on a single Redis key taken with SET NX PX.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Acquire takes key for ttl. A key held by someone else is sentinel.ErrLocked.
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (Handle, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return Handle{}, fmt.Errorf("acquire lock %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	if !ok {
		return Handle{}, sentinel.ErrLocked
	}
	return Handle{Key: key, Token: token}, nil
}

// Release frees the lock if h still holds it. Releasing an expired or
// foreign lock is a no-op.
func (r *Redis) Release(ctx context.Context, h Handle) error {
	if err := releaseScript.Run(ctx, r.client, []string{h.Key}, h.Token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", h.Key, err)
	}
	return nil
}

// Memory is a process-local lock with the same expiry semantics as Redis.
type Memory struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	clock func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]memoryEntry), clock: time.Now}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if entry, ok := m.held[key]; ok && now.Before(entry.expires) {
		return Handle{}, sentinel.ErrLocked
	}
	token := uuid.NewString()
	m.held[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	return Handle{Key: key, Token: token}, nil
}

func (m *Memory) Release(_ context.Context, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.held[h.Key]; ok && entry.token == h.Token {
		delete(m.held, h.Key)
	}
	return nil
}
