package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockItem resumen compacto de un SKU que se envía al modelo.
type StockItem struct {
	Name string          `json:"name"`
	Qty  decimal.Decimal `json:"qty"`
	Min  decimal.Decimal `json:"min"`
}

// RecentMove movimiento reciente incluido en el contexto del modelo.
type RecentMove struct {
	Product     string          `json:"productName"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Origin      string          `json:"origin"`
	Responsible string          `json:"responsible"`
	Date        string          `json:"date"`
}

// StockDigest datos de entrada para generar insights.
type StockDigest struct {
	Items  []StockItem
	Recent []RecentMove
}

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Gemini, Anthropic, mock) debe implementar esta interfaz.
type LLMService interface {
	// Name identifica al proveedor en las respuestas (gemini, anthropic).
	Name() string
	// StockInsights devuelve observaciones breves sobre el estado del stock.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	StockInsights(ctx context.Context, digest StockDigest) ([]string, error)
}
