package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovementTypeEntry = "entry" // entrada
	MovementTypeExit  = "exit"  // salida
)

// Orígenes de un movimiento.
const (
	OriginPurchase = "compra"
	OriginReturn   = "devolucao"
	OriginTransfer = "transferencia"
	OriginSale     = "venda"
	OriginConsume  = "consumo"
)

// ValidOrigin indica si el origen pertenece al conjunto permitido.
func ValidOrigin(origin string) bool {
	switch origin {
	case OriginPurchase, OriginReturn, OriginTransfer, OriginSale, OriginConsume:
		return true
	}
	return false
}

// Movement registro inmutable de una entrada o salida sobre un LocationRecord.
// Quantity siempre es positiva; el sentido lo da Type.
// Los traslados generan un par salida+entrada con el mismo TransferID.
type Movement struct {
	ID          string
	TransferID  string
	ProductID   string // ID del LocationRecord afectado
	Code        string
	ProductName string
	Type        string
	Quantity    decimal.Decimal
	Date        time.Time
	Origin      string
	Responsible string
	Observation string
	Address     Address
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (m *Movement) Signed() decimal.Decimal {
	if m.Type == MovementTypeExit {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
