package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/inventory"
)

func rec(code string, qty int64, addr entity.Address) *entity.LocationRecord {
	return &entity.LocationRecord{ID: code + addr.Key(), Code: code, Quantity: decimal.NewFromInt(qty), Address: addr}
}

func TestConsolidate_SumaPorCodigoYMarcaBajoStock(t *testing.T) {
	catalog := map[string]*entity.CatalogEntry{
		"1010": {Code: "1010", Name: "Feltro Verde", Category: "10 MT", MinQuantity: decimal.NewFromInt(98)},
		"2020": {Code: "2020", Name: "Feltro Azul", Category: "30 MT", MinQuantity: decimal.NewFromInt(10)},
	}
	records := []*entity.LocationRecord{
		rec("1010", 50, entity.Address{Street: "8-A", Block: "01", Level: "01", Position: "01"}),
		rec("1010", 40, entity.Address{Street: "8-B", Block: "02", Level: "01", Position: "01"}),
		rec("2020", 0, entity.PendingAddress()),
		rec("2020", 25, entity.Address{Street: "9", Block: "01"}),
	}

	totals := inventory.Consolidate(records, catalog)
	require.Len(t, totals, 2)

	byCode := map[string]inventory.SKUTotal{}
	for _, tt := range totals {
		byCode[tt.Code] = tt
	}
	assert.True(t, byCode["1010"].Total.Equal(decimal.NewFromInt(90)))
	assert.True(t, byCode["1010"].LowStock, "90 <= 98 debe marcar bajo stock")
	assert.Equal(t, 2, byCode["1010"].Locations)
	assert.True(t, byCode["2020"].Total.Equal(decimal.NewFromInt(25)))
	assert.False(t, byCode["2020"].LowStock)
	assert.Equal(t, 1, byCode["2020"].Locations, "el placeholder no cuenta como ubicación")
}

func TestConsolidate_SinCatalogoUsaMinimoPorDefecto(t *testing.T) {
	totals := inventory.Consolidate([]*entity.LocationRecord{rec("X1", 98, entity.Address{Street: "1", Block: "1"})}, nil)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].MinQuantity.Equal(entity.DefaultMinQuantity))
	assert.True(t, totals[0].LowStock, "el límite es inclusivo")
}

func TestConsolidate_CatalogoSinRegistrosTotalCero(t *testing.T) {
	catalog := map[string]*entity.CatalogEntry{"A": {Code: "A", Name: "A"}}
	totals := inventory.Consolidate(nil, catalog)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Total.IsZero())
	assert.True(t, totals[0].LowStock)
}

func TestSummarize(t *testing.T) {
	totals := []inventory.SKUTotal{
		{Code: "A", Total: decimal.NewFromInt(5), LowStock: true},
		{Code: "B", Total: decimal.NewFromInt(200)},
	}
	s := inventory.Summarize(totals)
	assert.True(t, s.TotalQuantity.Equal(decimal.NewFromInt(205)))
	assert.Equal(t, 1, s.LowStockCount)
	assert.Equal(t, 2, s.SKUCount)
	assert.Len(t, inventory.LowStockOnly(totals), 1)
}

func TestCategoryExits_VentanaYCategoriaDesconocida(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -30)
	catalog := map[string]*entity.CatalogEntry{"1010": {Code: "1010", Category: "10 MT"}}
	movs := []*entity.Movement{
		{Code: "1010", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(60), Date: now.AddDate(0, 0, -1)},
		{Code: "1010", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(5), Date: now.AddDate(0, 0, -40)},
		{Code: "1010", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(150), Date: now},
		{Code: "ZZ", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(3), Date: now},
	}

	out := inventory.CategoryExits(movs, catalog, since)
	require.Len(t, out, 2)
	assert.Equal(t, "10 MT", out[0].Category)
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, inventory.UncategorizedLabel, out[1].Category)
}

func TestLabelPayload_IdaYVuelta(t *testing.T) {
	r := rec("181400010180003", 1, entity.Address{Street: "8-a", Block: "01", Level: "04", Position: "01"})
	payload := inventory.LabelPayload(r, &entity.CatalogEntry{Name: "Feltro Verde Bilhar"})
	assert.Equal(t, "LOGIMAP 360 | SKU: 181400010180003 | ITEM: Feltro Verde Bilhar | END: R8-A B01 N04 P01", payload)

	code, ok := inventory.ParseLabelCode(payload)
	require.True(t, ok)
	assert.Equal(t, "181400010180003", code)

	_, ok = inventory.ParseLabelCode("7891234567890")
	assert.False(t, ok)
}
