package consolidation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/consolidation"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

type fakeCache struct {
	totals      []domaininv.SKUTotal
	ok          bool
	getErr      error
	sets        int
	invalidated int
}

func (c *fakeCache) GetTotals(context.Context) ([]domaininv.SKUTotal, bool, error) {
	return c.totals, c.ok, c.getErr
}

func (c *fakeCache) SetTotals(_ context.Context, totals []domaininv.SKUTotal) error {
	c.sets++
	c.totals, c.ok = totals, true
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.totals, c.ok = nil, false
	return nil
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func seed(t *testing.T, store *memory.Store, code, category string, min int64, qtys ...int64) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Catalog().Create(ctx, &entity.CatalogEntry{
		Code: code, Name: "Item " + code, Category: category, Unit: "m",
		MinQuantity: dec(min), CreatedAt: now, UpdatedAt: now,
	}))
	for i, q := range qtys {
		require.NoError(t, store.Locations().Create(ctx, &entity.LocationRecord{
			Code: code, Quantity: dec(q), Version: 1,
			Address:   entity.Address{Street: "8", Block: string(rune('A' + i)), Level: "01", Position: "01"},
			CreatedAt: now, UpdatedAt: now,
		}))
	}
}

func exit(t *testing.T, store *memory.Store, code string, q int64, at time.Time) {
	t.Helper()
	require.NoError(t, store.Movements().Create(context.Background(), &entity.Movement{
		Code: code, Type: entity.MovementTypeExit, Quantity: dec(q), Date: at, Origin: entity.OriginSale,
	}))
}

func newUC(store *memory.Store, cache consolidation.Cache) *consolidation.UseCase {
	return consolidation.NewUseCase(store.Locations(), store.Catalog(), store.Movements(), cache, 30, zerolog.Nop())
}

func TestTotals_UsaCacheYRecalculaTrasInvalidar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store, "1010", "10 MT", 98, 100, 50)
	cache := &fakeCache{}
	uc := newUC(store, cache)

	totals, err := uc.Totals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Total.Equal(dec(150)))
	assert.Equal(t, 1, cache.sets)

	_, err = uc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "la segunda lectura sale de la cache")

	require.NoError(t, uc.Invalidate(ctx))
	_, err = uc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestTotals_ErrorDeCacheRecalcula(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "1010", "10 MT", 98, 10)
	uc := newUC(store, &fakeCache{getErr: errors.New("redis caído")})

	totals, err := uc.Totals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].LowStock)
}

func TestTotal_CodigoDesconocido(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "1010", "10 MT", 98, 10)
	uc := newUC(store, nil)

	got, err := uc.Total(context.Background(), " 1010 ")
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(dec(10)))

	_, err = uc.Total(context.Background(), "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	seed(t, store, "1010", "10 MT", 98, 150)
	seed(t, store, "2020", "30 MT", 98, 40)
	exit(t, store, "1010", 5, now.AddDate(0, 0, -1))
	exit(t, store, "2020", 7, now.AddDate(0, 0, -2))
	exit(t, store, "2020", 9, now.AddDate(0, 0, -60))

	d, err := newUC(store, nil).Dashboard(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Summary.SKUCount)
	assert.Equal(t, 1, d.Summary.LowStockCount)
	assert.True(t, d.Summary.TotalQuantity.Equal(dec(190)))
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "2020", d.LowStock[0].Code)
	assert.Len(t, d.Recent, 3)

	byCat := map[string]decimal.Decimal{}
	for _, c := range d.CategoryExits {
		byCat[c.Category] = c.Quantity
	}
	assert.True(t, byCat["10 MT"].Equal(dec(5)))
	assert.True(t, byCat["30 MT"].Equal(dec(7)), "la salida de hace 60 días queda fuera de la ventana")
}

func TestReplenishment_PriorizaPorSalidas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	seed(t, store, "A", "10 MT", 100, 90)
	seed(t, store, "B", "10 MT", 100, 10)
	seed(t, store, "C", "10 MT", 100, 200)
	exit(t, store, "A", 40, now.AddDate(0, 0, -10))
	exit(t, store, "B", 5, now.AddDate(0, 0, -80))
	exit(t, store, "B", 50, now.AddDate(0, 0, -120))

	list, err := newUC(store, nil).Replenishment(ctx, now)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "A", list[0].Code)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].IdealStock.Equal(dec(150)))
	assert.True(t, list[0].SuggestedQty.Equal(dec(60)))
	assert.True(t, list[0].ExitsLast90d.Equal(dec(40)))

	assert.Equal(t, "B", list[1].Code)
	assert.Equal(t, 2, list[1].Priority)
	assert.True(t, list[1].SuggestedQty.Equal(dec(140)))
	assert.True(t, list[1].ExitsLast90d.Equal(dec(5)))
}

func TestReplenishment_SinBajoStock(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "C", "10 MT", 10, 200)
	list, err := newUC(store, nil).Replenishment(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, list)
}
