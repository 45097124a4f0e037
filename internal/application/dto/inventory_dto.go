package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// EntryRequest body para POST /api/inventory/entries.
type EntryRequest struct {
	Code        string          `json:"code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Address     entity.Address  `json:"address"`
	Origin      string          `json:"origin,omitempty"`
	Observation string          `json:"observation,omitempty"`
}

// ExitRequest body para POST /api/inventory/exits.
type ExitRequest struct {
	RecordID        string          `json:"record_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Origin          string          `json:"origin,omitempty"`
	Observation     string          `json:"observation,omitempty"`
	ExpectedVersion *int64          `json:"expected_version,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	SourceID        string          `json:"source_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Destination     entity.Address  `json:"destination"`
	Observation     string          `json:"observation,omitempty"`
	ExpectedVersion *int64          `json:"expected_version,omitempty"`
}

// LocationRecordResponse registro con los datos del catálogo.
type LocationRecordResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	EAN         string          `json:"ean,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Address     entity.Address  `json:"address"`
	Placeholder bool            `json:"placeholder"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewLocationRecordResponse arma la respuesta a partir del registro y su catálogo (entry puede ser nil).
func NewLocationRecordResponse(rec *entity.LocationRecord, entry *entity.CatalogEntry) LocationRecordResponse {
	r := LocationRecordResponse{
		ID:          rec.ID,
		Code:        rec.Code,
		Quantity:    rec.Quantity,
		MinQuantity: entry.EffectiveMin(),
		Address:     rec.Address,
		Placeholder: rec.IsPlaceholder(),
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if entry != nil {
		r.Name = entry.Name
		r.Category = entry.Category
		r.Unit = entry.Unit
		r.EAN = entry.EAN
	}
	return r
}

// TransferResponse resultado de un traslado. Source es nil si el origen quedó en cero y se eliminó.
type TransferResponse struct {
	TransferID  string                  `json:"transfer_id"`
	Source      *LocationRecordResponse `json:"source"`
	Destination LocationRecordResponse  `json:"destination"`
}

// MovementListResponse lista paginada del libro.
type MovementListResponse struct {
	Items []TransactionDoc `json:"items"`
	Page  PageResponse     `json:"page"`
}

// SKUTotalResponse total consolidado de un SKU.
type SKUTotalResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Total       decimal.Decimal `json:"total"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	LowStock    bool            `json:"low_stock"`
	Locations   int             `json:"locations"`
}

// CategoryExitResponse salidas acumuladas de una categoría en la ventana del reporte.
type CategoryExitResponse struct {
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DashboardResponse respuesta de GET /api/dashboard.
type DashboardResponse struct {
	TotalQuantity decimal.Decimal        `json:"total_quantity"`
	LowStockCount int                    `json:"low_stock_count"`
	SKUCount      int                    `json:"sku_count"`
	LowStock      []SKUTotalResponse     `json:"low_stock"`
	CategoryExits []CategoryExitResponse `json:"category_exits"`
	RecentMoves   []TransactionDoc       `json:"recent_movements"`
}

// ResolveRequest texto leído por el escáner (etiqueta, EAN o id de registro).
type ResolveRequest struct {
	Text string `json:"text"`
}

// ResolveResponse SKU resuelto y sus ubicaciones.
type ResolveResponse struct {
	Code    string                   `json:"code"`
	Records []LocationRecordResponse `json:"records"`
}
