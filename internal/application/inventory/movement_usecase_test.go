package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return nil
}

var (
	addrA = entity.Address{Street: "8-A", Block: "01", Level: "01", Position: "01"}
	addrB = entity.Address{Street: "8-B", Block: "02", Level: "01", Position: "01"}
)

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func seedCatalog(t *testing.T, store *memory.Store, code string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.Catalog().Create(context.Background(), &entity.CatalogEntry{
		Code: code, Name: "Feltro " + code, Category: "10 MT", Unit: "m",
		MinQuantity: entity.DefaultMinQuantity, CreatedAt: now, UpdatedAt: now,
	}))
}

func totalOf(t *testing.T, store *memory.Store, code string) decimal.Decimal {
	t.Helper()
	recs, err := store.Locations().ListByCode(context.Background(), code)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, r := range recs {
		require.False(t, r.Quantity.IsNegative(), "saldo negativo en %s", r.ID)
		sum = sum.Add(r.Quantity)
	}
	return sum
}

func newMovementUC(store *memory.Store, cache inventory.CacheInvalidator) *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(store, cache, zerolog.Nop())
}

func TestEntryYExit_BajoStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	cache := &countingCache{}
	uc := newMovementUC(store, cache)

	in, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(150), Address: addrA, Responsible: "Marta"})
	require.NoError(t, err)
	assert.True(t, in.Record.Quantity.Equal(qty(150)))
	assert.Equal(t, entity.OriginPurchase, in.Movement.Origin)

	out, err := uc.Exit(ctx, inventory.ExitInput{RecordID: in.Record.ID, Quantity: qty(60), Responsible: "Marta"})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.True(t, out.Record.Quantity.Equal(qty(90)))
	assert.Equal(t, int64(2), out.Record.Version)
	assert.Equal(t, 2, cache.calls)

	recs, _ := store.Locations().List(ctx, repository.LocationFilter{})
	entries, _ := store.Catalog().List(ctx)
	catalog := map[string]*entity.CatalogEntry{}
	for _, e := range entries {
		catalog[e.Code] = e
	}
	totals := domaininv.Consolidate(recs, catalog)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Total.Equal(qty(90)))
	assert.True(t, totals[0].LowStock)
}

func TestEntry_FusionaMismaDireccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	first, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(10), Address: addrA})
	require.NoError(t, err)
	second, err := uc.Entry(ctx, inventory.EntryInput{Code: " 1010 ", Quantity: qty(5), Address: entity.Address{Street: "8-a", Block: "01", Level: "01", Position: "01"}})
	require.NoError(t, err)

	assert.Equal(t, first.Record.ID, second.Record.ID)
	recs, _ := store.Locations().ListByCode(ctx, "1010")
	assert.Len(t, recs, 1)
	assert.True(t, totalOf(t, store, "1010").Equal(qty(15)))
}

func TestExit_SaldoInsuficienteSinCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	in, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(90), Address: addrA})
	require.NoError(t, err)
	movesBefore, _ := store.Movements().List(ctx, repository.MovementFilter{})
	countsBefore, _ := store.Outbox().Counts(ctx)

	_, err = uc.Exit(ctx, inventory.ExitInput{RecordID: in.Record.ID, Quantity: qty(999)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, _ := store.Locations().GetByID(ctx, in.Record.ID)
	assert.True(t, rec.Quantity.Equal(qty(90)))
	movesAfter, _ := store.Movements().List(ctx, repository.MovementFilter{})
	assert.Len(t, movesAfter, len(movesBefore))
	countsAfter, _ := store.Outbox().Counts(ctx)
	assert.Equal(t, countsBefore.Pending, countsAfter.Pending)
}

func TestExit_EliminaRegistroEnCero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	in, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(5), Address: addrA})
	require.NoError(t, err)
	out, err := uc.Exit(ctx, inventory.ExitInput{RecordID: in.Record.ID, Quantity: qty(5)})
	require.NoError(t, err)
	assert.Nil(t, out.Record)

	rec, _ := store.Locations().GetByID(ctx, in.Record.ID)
	assert.Nil(t, rec)
}

func TestExit_VersionEsperadaDistinta(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	in, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(5), Address: addrA})
	require.NoError(t, err)
	stale := int64(7)
	_, err = uc.Exit(ctx, inventory.ExitInput{RecordID: in.Record.ID, Quantity: qty(1), ExpectedVersion: &stale})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	current := in.Record.Version
	_, err = uc.Exit(ctx, inventory.ExitInput{RecordID: in.Record.ID, Quantity: qty(1), ExpectedVersion: &current})
	assert.NoError(t, err)
}

func TestEntry_Validaciones(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	_, err := uc.Entry(ctx, inventory.EntryInput{Code: "9999", Quantity: qty(1), Address: addrA})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(1), Address: entity.Address{Street: "8-A"}})
	assert.ErrorIs(t, err, domain.ErrIncompleteAddress)

	_, err = uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(0), Address: addrA})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(1), Address: addrA, Origin: "regalo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: decimal.RequireFromString("1.2345"), Address: addrA})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "más de tres decimales")
	assert.True(t, totalOf(t, store, "1010").IsZero())
}

func TestEntry_ConsumePlaceholderEnCero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	now := time.Now().UTC()
	require.NoError(t, store.Locations().Create(ctx, &entity.LocationRecord{
		Code: "1010", Quantity: decimal.Zero, Address: entity.PendingAddress(), Version: 1, CreatedAt: now, UpdatedAt: now,
	}))
	uc := newMovementUC(store, nil)

	_, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(3), Address: addrA})
	require.NoError(t, err)

	recs, _ := store.Locations().ListByCode(ctx, "1010")
	require.Len(t, recs, 1)
	assert.False(t, recs[0].IsPlaceholder())
}

func TestEntry_EncolaReplicaRemota(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCatalog(t, store, "1010")
	uc := newMovementUC(store, nil)

	_, err := uc.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: qty(3), Address: addrA})
	require.NoError(t, err)

	batch, err := store.Outbox().NextBatch(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, entity.CollectionProducts, batch[0].Collection)
	assert.Equal(t, int64(1), batch[0].Version)
	assert.Equal(t, entity.CollectionTransactions, batch[1].Collection)
}
