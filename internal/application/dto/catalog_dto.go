package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// CreateCatalogRequest body para POST /api/catalog.
type CreateCatalogRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Unit        string           `json:"unit"`
	EAN         string           `json:"ean,omitempty"`
	Supplier    string           `json:"supplier,omitempty"`
	Description string           `json:"description,omitempty"`
	MinQuantity *decimal.Decimal `json:"min_quantity,omitempty"`
}

// UpdateCatalogRequest body para PUT /api/catalog/records/:id; solo se aplican los campos presentes.
type UpdateCatalogRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	EAN         *string          `json:"ean,omitempty"`
	Supplier    *string          `json:"supplier,omitempty"`
	Description *string          `json:"description,omitempty"`
	MinQuantity *decimal.Decimal `json:"min_quantity,omitempty"`
}

// CatalogEntryResponse entrada de catálogo con su total consolidado.
type CatalogEntryResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	EAN         string          `json:"ean,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	Description string          `json:"description,omitempty"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// ImportResponse resultado agregado de una importación.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ReferenceRequest body para alta/baja de categorías y unidades.
type ReferenceRequest struct {
	Name string `json:"name"`
}

// NewCatalogEntryResponse convierte la entrada de catálogo.
func NewCatalogEntryResponse(e *entity.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		Code:        e.Code,
		Name:        e.Name,
		Category:    e.Category,
		Unit:        e.Unit,
		EAN:         e.EAN,
		Supplier:    e.Supplier,
		Description: e.Description,
		MinQuantity: e.EffectiveMin(),
	}
}

// CreateCatalogResponse entrada creada y su placeholder PENDING.
type CreateCatalogResponse struct {
	Entry       CatalogEntryResponse    `json:"entry"`
	Placeholder *LocationRecordResponse `json:"placeholder,omitempty"`
}
