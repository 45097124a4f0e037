package admin

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Catalog().Create(ctx, &entity.CatalogEntry{Code: "1", Name: "x", MinQuantity: decimal.NewFromInt(98)}))
	require.NoError(t, store.Locations().Create(ctx, &entity.LocationRecord{Code: "1", Quantity: decimal.NewFromInt(3), Address: entity.Address{Street: "1", Block: "1"}, Version: 1}))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{Code: "1", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(3), Date: time.Now()}))
	require.NoError(t, store.References().Add(ctx, entity.ReferenceUnit, "un"))
	return store
}

func TestReset_RequiereAdminYConfirmacion(t *testing.T) {
	store := seeded(t)
	uc := NewResetUseCase(store, nil, zerolog.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, uc.Reset(ctx, entity.RoleOperator, "ana", "RESET"), domain.ErrForbidden)
	assert.ErrorIs(t, uc.Reset(ctx, entity.RoleAdmin, "ana", "reset"), domain.ErrConfirmationRequired)

	recs, _ := store.Locations().List(ctx, repository.LocationFilter{})
	assert.Len(t, recs, 1)
}

func TestReset_BorraYEncolaPurga(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	require.NoError(t, NewResetUseCase(store, nil, zerolog.Nop()).Reset(ctx, entity.RoleAdmin, "admin", "RESET"))

	recs, _ := store.Locations().List(ctx, repository.LocationFilter{})
	entries, _ := store.Catalog().List(ctx)
	movs, _ := store.Movements().List(ctx, repository.MovementFilter{})
	units, _ := store.References().List(ctx, entity.ReferenceUnit)
	assert.Empty(t, recs)
	assert.Empty(t, entries)
	assert.Empty(t, movs)
	assert.Equal(t, []string{"un"}, units)

	batch, _ := store.Outbox().NextBatch(ctx, time.Now().Add(time.Hour), 0)
	require.Len(t, batch, 2)
	assert.Equal(t, entity.OutboxOpPurge, batch[0].Op)
	assert.Equal(t, entity.CollectionProducts, batch[0].Collection)
	assert.Equal(t, entity.CollectionTransactions, batch[1].Collection)
}
