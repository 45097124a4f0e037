package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// OutboxCounts conteos por estado para el estado de sincronización.
type OutboxCounts struct {
	Pending   int
	Failed    int
	Conflicts int
	LastError string
}

// OutboxRepository cola persistente de intenciones de escritura remota.
type OutboxRepository interface {
	Enqueue(ctx context.Context, entry *entity.OutboxEntry) error
	// NextBatch devuelve entradas pendientes cuyo NextAttemptAt <= now, en orden de Seq. Se corta en
	// la primera pendiente que aún no vence: nada la adelanta.
	NextBatch(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error)
	MarkDone(ctx context.Context, seq int64) error
	MarkRetry(ctx context.Context, seq int64, attempts int, nextAttemptAt time.Time, lastErr string) error
	// MarkFinal deja la entrada en failed o conflict; ya no se reintenta.
	MarkFinal(ctx context.Context, seq int64, status, lastErr string) error
	Counts(ctx context.Context) (OutboxCounts, error)
}
