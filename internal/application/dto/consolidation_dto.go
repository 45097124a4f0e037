package dto

import (
	"github.com/shopspring/decimal"

	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
)

// NewSKUTotalResponse convierte un total consolidado.
func NewSKUTotalResponse(t domaininv.SKUTotal) SKUTotalResponse {
	return SKUTotalResponse{
		Code:        t.Code,
		Name:        t.Name,
		Category:    t.Category,
		Unit:        t.Unit,
		Total:       t.Total,
		MinQuantity: t.MinQuantity,
		LowStock:    t.LowStock,
		Locations:   t.Locations,
	}
}

// NewSKUTotalList convierte una lista; nunca devuelve nil.
func NewSKUTotalList(totals []domaininv.SKUTotal) []SKUTotalResponse {
	out := make([]SKUTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, NewSKUTotalResponse(t))
	}
	return out
}

// NewCategoryExitList convierte las salidas por categoría.
func NewCategoryExitList(exits []domaininv.CategoryExit) []CategoryExitResponse {
	out := make([]CategoryExitResponse, 0, len(exits))
	for _, e := range exits {
		out = append(out, CategoryExitResponse{Category: e.Category, Quantity: e.Quantity})
	}
	return out
}

// ReplenishmentResponse sugerencia de reposición.
type ReplenishmentResponse struct {
	Priority     int             `json:"priority"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinQuantity  decimal.Decimal `json:"min_quantity"`
	IdealStock   decimal.Decimal `json:"ideal_stock"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
	ExitsLast90d decimal.Decimal `json:"exits_last_90d"`
}
