package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinQuantity umbral mínimo cuando el SKU no define uno propio.
var DefaultMinQuantity = decimal.NewFromInt(98)

// CatalogEntry metadatos descriptivos de un SKU (uno por código).
// Las cantidades viven en LocationRecord; aquí solo se describe el material.
type CatalogEntry struct {
	Code        string
	Name        string
	Category    string
	Unit        string
	EAN         string
	Supplier    string
	Description string
	MinQuantity decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeCode aplica la convención de códigos: sin espacios y en mayúsculas.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveMin devuelve MinQuantity o el umbral por defecto si no fue definido.
func (c *CatalogEntry) EffectiveMin() decimal.Decimal {
	if c == nil || c.MinQuantity.LessThanOrEqual(decimal.Zero) {
		return DefaultMinQuantity
	}
	return c.MinQuantity
}
