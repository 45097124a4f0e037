package dto

import "time"

// SyncStatusResponse estado de la outbox.
type SyncStatusResponse struct {
	State       string     `json:"state"`
	Pending     int        `json:"pending"`
	Failed      int        `json:"failed"`
	Conflicts   int        `json:"conflicts"`
	LastDrainAt *time.Time `json:"last_drain_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// BundleRequest cuerpo con un paquete escaneado.
type BundleRequest struct {
	Bundle string `json:"bundle"`
}

// BundleResponse paquete codificado para escaneo.
type BundleResponse struct {
	Bundle string `json:"bundle"`
	Length int    `json:"length"`
}

// ResetRequest confirmación del reset administrativo.
type ResetRequest struct {
	Confirm string `json:"confirm"`
}

// InsightsResponse sugerencias de stock generadas por IA o de respaldo.
type InsightsResponse struct {
	Insights []string `json:"insights"`
	Source   string   `json:"source"` // gemini | anthropic | fallback
}

// RestoreResponse conteos de una restauración.
type RestoreResponse struct {
	Products     int `json:"products"`
	Transactions int `json:"transactions"`
	Entries      int `json:"entries"`
}

// LabelResponse etiqueta de un bin con el texto del QR.
type LabelResponse struct {
	Record  LocationRecordResponse `json:"record"`
	Payload string                 `json:"payload"`
}
