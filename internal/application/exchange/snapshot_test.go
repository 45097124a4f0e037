package exchange_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

func newExchange(store *memory.Store) *exchange.UseCase {
	return exchange.NewUseCase(store, store.Locations(), store.Catalog(), store.Movements(),
		store.Users(), store.References(), nil, zerolog.Nop())
}

func seedState(t *testing.T, store *memory.Store) *entity.LocationRecord {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Catalog().Create(ctx, &entity.CatalogEntry{
		Code: "1010", Name: "Feltro Verde Bilhar", Category: "10 MT", Unit: "m",
		MinQuantity: decimal.NewFromInt(98), CreatedAt: now, UpdatedAt: now,
	}))
	rec := &entity.LocationRecord{
		Code: "1010", Quantity: decimal.NewFromInt(40), Version: 3,
		Address:   entity.Address{Street: "8-A", Block: "01", Level: "04", Position: "01"},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Locations().Create(ctx, rec))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		ProductID: rec.ID, Code: "1010", ProductName: "Feltro Verde Bilhar",
		Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(40), Date: now, Origin: entity.OriginPurchase,
	}))
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", Name: "admin", PasswordHash: "$2a$10$hash", Role: entity.RoleAdmin}))
	require.NoError(t, store.References().Add(ctx, entity.ReferenceCategory, "10 MT"))
	return rec
}

func TestExportRestore_IdaYVuelta(t *testing.T) {
	ctx := context.Background()
	src := memory.NewStore()
	rec := seedState(t, src)

	snap, err := newExchange(src).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.SnapshotVersion, snap.V)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Feltro Verde Bilhar", snap.Products[0].Name)
	assert.Equal(t, int64(3), snap.Products[0].Version)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, []string{"10 MT"}, snap.Categories)
	assert.Empty(t, snap.Units)

	dst := memory.NewStore()
	res, err := newExchange(dst).Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Products)
	assert.Equal(t, 1, res.Transactions)

	got, err := dst.Locations().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(40)))
	entry, _ := dst.Catalog().Get(ctx, "1010")
	require.NotNil(t, entry)
	assert.Equal(t, "10 MT", entry.Category)
	cats, _ := dst.References().List(ctx, entity.ReferenceCategory)
	assert.Equal(t, []string{"10 MT"}, cats)

	users, _ := dst.Users().List(ctx)
	assert.Empty(t, users, "los usuarios sin contraseña no se restauran")

	pending, err := dst.Outbox().NextBatch(ctx, time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	var purges, upserts int
	for _, e := range pending {
		switch e.Op {
		case entity.OutboxOpPurge:
			purges++
		case entity.OutboxOpUpsert:
			upserts++
		}
	}
	assert.Equal(t, 2, purges)
	assert.Equal(t, 2, upserts)
}

func TestExport_SinHashDeContrasena(t *testing.T) {
	store := memory.NewStore()
	seedState(t, store)
	snap, err := newExchange(store).Export(context.Background())
	require.NoError(t, err)

	bundle, err := exchange.EncodeBundle(snap, 0)
	require.NoError(t, err)
	decoded, err := exchange.DecodeBundle(bundle)
	require.NoError(t, err)
	assert.NotContains(t, bundle, "$2a$")
	assert.Equal(t, snap.Products[0].ID, decoded.Products[0].ID)
}

func TestRestore_ReemplazaSinFusionar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	old := seedState(t, store)
	addr := entity.Address{Street: "9", Block: "02"}

	snap := dto.Snapshot{
		Products: []dto.ProductDoc{
			{ID: "p1", Code: "2020", Name: "Taco", Quantity: decimal.NewFromInt(5), Address: addr},
			{ID: "p2", Code: "2020", Name: "Taco", Quantity: decimal.NewFromInt(7), Address: addr},
		},
		V: dto.SnapshotVersion,
	}
	res, err := newExchange(store).Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Products)

	gone, _ := store.Locations().GetByID(ctx, old.ID)
	assert.Nil(t, gone)
	recs, _ := store.Locations().List(ctx, repository.LocationFilter{})
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Quantity.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, entity.DefaultMinQuantity.String(), mustEntry(t, store, "2020").MinQuantity.String())
	movs, _ := store.Movements().List(ctx, repository.MovementFilter{})
	assert.Empty(t, movs)
}

func TestRestore_DescartaSaldoCeroFueraDePending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	snap := dto.Snapshot{
		Products: []dto.ProductDoc{
			{ID: "p1", Code: "1010", Name: "Feltro", Quantity: decimal.NewFromInt(30), Address: entity.Address{Street: "8-A", Block: "01", Level: "01", Position: "01"}},
			{ID: "p2", Code: "1010", Name: "Feltro", Quantity: decimal.Zero, Address: entity.Address{Street: "8-B", Block: "02", Level: "01", Position: "01"}},
			{ID: "p3", Code: "3030", Name: "Giz", Quantity: decimal.Zero, Address: entity.PendingAddress()},
		},
		V: dto.SnapshotVersion,
	}
	res, err := newExchange(store).Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)

	gone, _ := store.Locations().GetByID(ctx, "p2")
	assert.Nil(t, gone)
	placeholder, _ := store.Locations().GetByID(ctx, "p3")
	require.NotNil(t, placeholder, "el placeholder en cero se conserva")
	assert.True(t, placeholder.IsPlaceholder())
	assert.NotNil(t, mustEntry(t, store, "1010"))
}

func TestRestore_MovimientoAntiguoTomaCodigoDelProducto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now().UTC()
	snap := dto.Snapshot{
		Products: []dto.ProductDoc{
			{ID: "p1", Code: "1010", Name: "Feltro", Category: "10 MT", Quantity: decimal.NewFromInt(20), Address: entity.Address{Street: "8-A", Block: "01"}},
		},
		Transactions: []dto.TransactionDoc{
			{ID: "t1", ProductID: "p1", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(10), Date: now},
			{ID: "t2", ProductID: "1010", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(5), Date: now},
			{ID: "t3", ProductID: "desconocido", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(1), Date: now},
		},
		V: dto.SnapshotVersion,
	}
	_, err := newExchange(store).Restore(ctx, snap)
	require.NoError(t, err)

	for id, code := range map[string]string{"t1": "1010", "t2": "1010", "t3": ""} {
		m, err := store.Movements().GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, code, m.Code, id)
	}

	movs, _ := store.Movements().List(ctx, repository.MovementFilter{})
	catalog := map[string]*entity.CatalogEntry{"1010": mustEntry(t, store, "1010")}
	exits := domaininv.CategoryExits(movs, catalog, now.Add(-time.Hour))
	require.Len(t, exits, 2)
	assert.Equal(t, "10 MT", exits[0].Category)
	assert.True(t, exits[0].Quantity.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, domaininv.UncategorizedLabel, exits[1].Category)
}

func TestRestore_CantidadNegativaRechazada(t *testing.T) {
	store := memory.NewStore()
	seedState(t, store)
	snap := dto.Snapshot{Products: []dto.ProductDoc{{Code: "1", Quantity: decimal.NewFromInt(-1)}}}
	_, err := newExchange(store).Restore(context.Background(), snap)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	recs, _ := store.Locations().List(context.Background(), repository.LocationFilter{})
	assert.Len(t, recs, 1, "el estado previo queda intacto")
}

func TestBundle_LimiteYPrefijo(t *testing.T) {
	snap := dto.Snapshot{Categories: []string{strings.Repeat("X", 500)}, V: dto.SnapshotVersion}
	_, err := exchange.EncodeBundle(snap, 100)
	assert.ErrorIs(t, err, domain.ErrBundleTooLarge)

	out, err := exchange.EncodeBundle(snap, 2500)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, exchange.BundlePrefix))

	_, err = exchange.DecodeBundle("OTRA-COSA:abc")
	assert.ErrorIs(t, err, domain.ErrInvalidBundle)
	_, err = exchange.DecodeBundle(exchange.BundlePrefix + "%%%")
	assert.ErrorIs(t, err, domain.ErrInvalidBundle)
}

func TestLabels_OmitePlaceholder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := seedState(t, store)
	require.NoError(t, store.Locations().Create(ctx, &entity.LocationRecord{
		Code: "1010", Quantity: decimal.Zero, Address: entity.PendingAddress(), Version: 1,
	}))

	labels, err := newExchange(store).Labels(ctx, repository.LocationFilter{})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "LOGIMAP 360 | SKU: 1010 | ITEM: Feltro Verde Bilhar | END: R8-A B01 N04 P01", labels[0].Payload)

	one, err := newExchange(store).Label(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, labels[0].Payload, one.Payload)

	_, err = newExchange(store).Label(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func mustEntry(t *testing.T, store *memory.Store, code string) *entity.CatalogEntry {
	t.Helper()
	e, err := store.Catalog().Get(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func TestExportLedger_CSVConBOMYSinPaginar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedState(t, store)
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		Code: "9999", ProductName: "Item removido", Type: entity.MovementTypeExit,
		Quantity: decimal.NewFromFloat(2.5), Date: time.Now().UTC(), Origin: entity.OriginSale,
	}))

	var sb strings.Builder
	require.NoError(t, newExchange(store).ExportLedger(ctx, &sb, repository.MovementFilter{Limit: 1}))
	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFFData;Operação;SKU"))
	assert.Contains(t, out, "SAÍDA (-);S/SKU;Item removido;2.5")
	assert.Contains(t, out, "ENTRADA (+);1010;Feltro Verde Bilhar;40.0")

	page, err := newExchange(store).Ledger(ctx, repository.MovementFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
