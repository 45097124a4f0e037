package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/pkg/config"
)

const totalsKey = "bodega:consolidation:totals"

// NewRedis abre el cliente y verifica la conexión con Ping.
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ConsolidationCache guarda los totales por SKU serializados en JSON bajo una sola clave.
type ConsolidationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConsolidationCache ttl <= 0 deja la clave sin expiración.
func NewConsolidationCache(client *redis.Client, ttl time.Duration) *ConsolidationCache {
	return &ConsolidationCache{client: client, ttl: ttl}
}

// GetTotals devuelve ok=false si la clave no existe.
func (c *ConsolidationCache) GetTotals(ctx context.Context) ([]inventory.SKUTotal, bool, error) {
	raw, err := c.client.Get(ctx, totalsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var totals []inventory.SKUTotal
	if err := json.Unmarshal(raw, &totals); err != nil {
		return nil, false, fmt.Errorf("decodificar totales: %w", err)
	}
	return totals, true, nil
}

func (c *ConsolidationCache) SetTotals(ctx context.Context, totals []inventory.SKUTotal) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, totalsKey, raw, c.ttl).Err()
}

func (c *ConsolidationCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, totalsKey).Err()
}
