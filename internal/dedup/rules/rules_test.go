package rules

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/dedup/models"
)

type store interface {
	Get(ctx context.Context) (models.Config, error)
	Put(ctx context.Context, cfg models.Config) error
}

func TestStores(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	for name, s := range map[string]store{"memory": NewMemory(), "redis": NewRedis(client)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cfg, err := s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.DefaultConfig(), cfg)

			want := models.Config{UsePhone: true}
			require.NoError(t, s.Put(ctx, want))
			cfg, err = s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}

	t.Run("corrupt redis document is an error", func(t *testing.T) {
		require.NoError(t, mr.Set(Key, "{not json"))
		_, err := NewRedis(client).Get(context.Background())
		assert.Error(t, err)
	})
}
