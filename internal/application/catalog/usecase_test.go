package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/catalog"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

func newCatalog(store *memory.Store) *catalog.UseCase {
	return catalog.NewUseCase(store, store.Catalog(), store.Locations(), store.References(), store.Outbox(), nil, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreate_PlaceholderSinStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)

	entry, placeholder, err := uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Feltro Verde", Category: "10 MT", Unit: "m"})
	require.NoError(t, err)
	assert.True(t, entry.MinQuantity.Equal(entity.DefaultMinQuantity))
	require.NotNil(t, placeholder)
	assert.True(t, placeholder.IsPlaceholder())
	assert.True(t, placeholder.Quantity.IsZero())

	_, _, err = uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, _, err = uc.Create(ctx, catalog.CreateInput{Code: "2020"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEdit_ActualizaCatalogoYRepublicaRegistros(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)
	_, _, err := uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Feltro Verde"})
	require.NoError(t, err)

	mov := inventory.NewMovementUseCase(store, nil, zerolog.Nop())
	a, err := mov.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: decimal.NewFromInt(5), Address: entity.Address{Street: "1", Block: "1"}})
	require.NoError(t, err)
	b, err := mov.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: decimal.NewFromInt(5), Address: entity.Address{Street: "2", Block: "1"}})
	require.NoError(t, err)

	edited, err := uc.Edit(ctx, b.Record.ID, catalog.UpdateInput{Name: strPtr("Feltro Verde Bilhar"), Category: strPtr("30 MT")})
	require.NoError(t, err)
	assert.Equal(t, "Feltro Verde Bilhar", edited.Name)

	// ambos registros ven la misma descripción, sin divergencia por fila
	for _, id := range []string{a.Record.ID, b.Record.ID} {
		_, e, err := uc.GetRecord(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Feltro Verde Bilhar", e.Name)
		assert.Equal(t, "30 MT", e.Category)
	}
	recA, _ := store.Locations().GetByID(ctx, a.Record.ID)
	assert.Equal(t, int64(2), recA.Version)

	_, err = uc.Edit(ctx, "nope", catalog.UpdateInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Edit(ctx, a.Record.ID, catalog.UpdateInput{Name: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_RechazaConStockEnOtraDireccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)
	_, placeholder, err := uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Feltro"})
	require.NoError(t, err)

	// stock directo en el placeholder para que conviva con otro registro en cero
	now := time.Now().UTC()
	require.NoError(t, store.Locations().Create(ctx, &entity.LocationRecord{
		Code: "1010", Quantity: decimal.NewFromInt(5), Address: entity.Address{Street: "8-A", Block: "01"}, Version: 1, CreatedAt: now, UpdatedAt: now,
	}))

	err = uc.Delete(ctx, placeholder.ID)
	assert.ErrorIs(t, err, domain.ErrStockRemaining)
	recs, _ := store.Locations().ListByCode(ctx, "1010")
	assert.Len(t, recs, 2)
}

func TestDelete_EliminaCodigoCompleto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)
	_, placeholder, err := uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Feltro"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, placeholder.ID))
	recs, _ := store.Locations().ListByCode(ctx, "1010")
	assert.Empty(t, recs)
	e, _ := store.Catalog().Get(ctx, "1010")
	assert.Nil(t, e)
}

func TestResolveScan(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)
	_, placeholder, err := uc.Create(ctx, catalog.CreateInput{Code: "181400010180003", Name: "Feltro", EAN: "7891234567890"})
	require.NoError(t, err)

	for _, text := range []string{
		"LOGIMAP 360 | SKU: 181400010180003 | ITEM: Feltro | END: RPENDING B--- N--- P---",
		"7891234567890",
		placeholder.ID,
		"181400010180003",
	} {
		entry, recs, err := uc.ResolveScan(ctx, text)
		require.NoError(t, err, text)
		assert.Equal(t, "181400010180003", entry.Code)
		assert.Len(t, recs, 1)
	}

	_, _, err = uc.ResolveScan(ctx, "desconocido")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferencias(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)

	require.NoError(t, uc.AddCategory(ctx, "10 mt"))
	assert.ErrorIs(t, uc.AddCategory(ctx, "10 MT"), domain.ErrDuplicate)
	require.NoError(t, uc.AddUnit(ctx, "kg"))
	cats, _ := uc.ListCategories(ctx)
	assert.Equal(t, []string{"10 MT"}, cats)

	require.NoError(t, uc.RemoveUnit(ctx, "kg"))
	units, _ := uc.ListUnits(ctx)
	assert.Empty(t, units)
	assert.ErrorIs(t, uc.RemoveUnit(ctx, "kg"), domain.ErrNotFound)

	counts, _ := store.Outbox().Counts(ctx)
	assert.Equal(t, 3, counts.Pending)
}

func TestListRecords_FiltroPorCalle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newCatalog(store)
	_, _, err := uc.Create(ctx, catalog.CreateInput{Code: "1010", Name: "Feltro"})
	require.NoError(t, err)
	mov := inventory.NewMovementUseCase(store, nil, zerolog.Nop())
	_, err = mov.Entry(ctx, inventory.EntryInput{Code: "1010", Quantity: decimal.NewFromInt(5), Address: entity.Address{Street: "8-a", Block: "1"}})
	require.NoError(t, err)

	recs, entries, err := uc.ListRecords(ctx, repository.LocationFilter{Street: "8-A"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Feltro", entries["1010"].Name)
}
