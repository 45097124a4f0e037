package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationRecord cantidad de un SKU en una dirección concreta. Existe a lo sumo uno por (Code, Address).
// Version se incrementa en cada mutación y se usa como token de concurrencia optimista.
type LocationRecord struct {
	ID        string
	Code      string
	Quantity  decimal.Decimal
	Address   Address
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityScale decimales que admite una cantidad; las columnas son NUMERIC(18,3).
const QuantityScale = 3

// ValidQuantity indica si q cabe en QuantityScale decimales sin redondeo.
func ValidQuantity(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// IsPlaceholder indica si el registro es el stub PENDING del SKU.
func (r *LocationRecord) IsPlaceholder() bool {
	return r.Address.IsPending()
}

// ShouldPrune un registro con saldo cero se elimina salvo que sea el placeholder.
func (r *LocationRecord) ShouldPrune() bool {
	return r.Quantity.IsZero() && !r.IsPlaceholder()
}

// Touch registra una mutación: sube la versión y actualiza la marca de tiempo.
func (r *LocationRecord) Touch(now time.Time) {
	r.Version++
	r.UpdatedAt = now
}
