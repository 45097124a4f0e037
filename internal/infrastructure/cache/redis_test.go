package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/pkg/config"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewRedis_SinServidorFalla(t *testing.T) {
	_, err := NewRedis(context.Background(), config.CacheConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestConsolidationCache_ErroresSePropagan(t *testing.T) {
	c := NewConsolidationCache(unreachableClient(), time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetTotals(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.SetTotals(ctx, nil))
	assert.Error(t, c.Invalidate(ctx))
}
