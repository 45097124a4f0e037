package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// UncategorizedLabel categoría usada cuando el movimiento no se puede asociar a un SKU del catálogo.
const UncategorizedLabel = "OUTROS"

// SKUTotal total consolidado de un SKU sobre todas sus direcciones (derivado, nunca persistido).
type SKUTotal struct {
	Code        string
	Name        string
	Category    string
	Unit        string
	Total       decimal.Decimal
	MinQuantity decimal.Decimal
	LowStock    bool
	Locations   int
}

// CategoryExit suma de salidas de una categoría en la ventana del reporte.
type CategoryExit struct {
	Category string
	Quantity decimal.Decimal
}

// Summary indicadores del tablero.
type Summary struct {
	TotalQuantity decimal.Decimal
	LowStockCount int
	SKUCount      int
}

// IsLowStock: total <= mínimo.
func IsLowStock(total, min decimal.Decimal) bool {
	return total.LessThanOrEqual(min)
}

// Consolidate agrega los registros por código. Los SKUs del catálogo sin registros aparecen con total 0.
// Un código sin entrada de catálogo usa el mínimo por defecto.
func Consolidate(records []*entity.LocationRecord, catalog map[string]*entity.CatalogEntry) []SKUTotal {
	byCode := make(map[string]*SKUTotal, len(catalog))
	get := func(code string) *SKUTotal {
		t, ok := byCode[code]
		if ok {
			return t
		}
		entry := catalog[code]
		t = &SKUTotal{Code: code, Total: decimal.Zero, MinQuantity: entry.EffectiveMin()}
		if entry != nil {
			t.Name, t.Category, t.Unit = entry.Name, entry.Category, entry.Unit
		}
		byCode[code] = t
		return t
	}
	for code := range catalog {
		get(code)
	}
	for _, r := range records {
		t := get(r.Code)
		t.Total = t.Total.Add(r.Quantity)
		if !r.IsPlaceholder() {
			t.Locations++
		}
	}

	out := make([]SKUTotal, 0, len(byCode))
	for _, t := range byCode {
		t.LowStock = IsLowStock(t.Total, t.MinQuantity)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// LowStockOnly filtra los totales en alerta.
func LowStockOnly(totals []SKUTotal) []SKUTotal {
	out := make([]SKUTotal, 0)
	for _, t := range totals {
		if t.LowStock {
			out = append(out, t)
		}
	}
	return out
}

// Summarize calcula los indicadores del tablero a partir de los totales.
func Summarize(totals []SKUTotal) Summary {
	s := Summary{TotalQuantity: decimal.Zero, SKUCount: len(totals)}
	for _, t := range totals {
		s.TotalQuantity = s.TotalQuantity.Add(t.Total)
		if t.LowStock {
			s.LowStockCount++
		}
	}
	return s
}

// CategoryExits suma las salidas desde since agrupadas por la categoría del SKU, de mayor a menor.
func CategoryExits(movements []*entity.Movement, catalog map[string]*entity.CatalogEntry, since time.Time) []CategoryExit {
	acc := make(map[string]decimal.Decimal)
	for _, m := range movements {
		if m.Type != entity.MovementTypeExit || m.Date.Before(since) {
			continue
		}
		category := UncategorizedLabel
		if entry, ok := catalog[m.Code]; ok && entry.Category != "" {
			category = entry.Category
		}
		acc[category] = acc[category].Add(m.Quantity)
	}
	out := make([]CategoryExit, 0, len(acc))
	for c, q := range acc {
		out = append(out, CategoryExit{Category: c, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
