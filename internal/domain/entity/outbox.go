package entity

import (
	"encoding/json"
	"time"
)

// Colecciones remotas replicadas.
const (
	CollectionProducts     = "products"
	CollectionTransactions = "transactions"
	CollectionUsers        = "users"
	CollectionCategories   = "categories"
	CollectionUnits        = "units"
)

// Collections orden de carga inicial.
var Collections = []string{
	CollectionProducts, CollectionTransactions, CollectionUsers, CollectionCategories, CollectionUnits,
}

// Operaciones de la outbox.
const (
	OutboxOpUpsert = "upsert"
	OutboxOpDelete = "delete"
	OutboxOpPurge  = "purge" // borra toda la colección remota
)

// Estados de una entrada de la outbox.
const (
	OutboxPending  = "pending"
	OutboxDone     = "done"
	OutboxFailed   = "failed"
	OutboxConflict = "conflict"
)

// OutboxEntry intención de mutación remota, escrita en la misma transacción que el cambio local.
type OutboxEntry struct {
	Seq           int64
	Collection    string
	Op            string
	RecordID      string
	Version       int64 // solo para products; 0 = sin control de versión
	Payload       json.RawMessage
	Status        string
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

// Estados agregados de sincronización.
const (
	SyncIdle     = "idle"
	SyncSyncing  = "syncing"
	SyncComplete = "complete"
	SyncFailed   = "failed"
	SyncDisabled = "disabled"
)

// SyncStatus resumen de la outbox expuesto a los operadores.
type SyncStatus struct {
	State       string
	Pending     int
	Failed      int
	Conflicts   int
	LastDrainAt *time.Time
	LastError   string
}
