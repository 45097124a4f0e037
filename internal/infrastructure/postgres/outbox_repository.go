package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola de sincronización en la tabla sync_outbox.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta la intención y asigna Seq.
func (r *OutboxRepo) Enqueue(ctx context.Context, e *entity.OutboxEntry) error {
	now := time.Now().UTC()
	if e.Status == "" {
		e.Status = entity.OutboxPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = e.CreatedAt
	}
	var payload []byte
	if len(e.Payload) > 0 {
		payload = e.Payload
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO sync_outbox (collection, op, record_id, version, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		e.Collection, e.Op, e.RecordID, e.Version, payload, e.Status, e.Attempts, e.NextAttemptAt, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("enqueue outbox: %w", err)
	}
	return nil
}

// NextBatch devuelve entradas pendientes vencidas en orden de Seq, sin saltar por encima de
// la primera pendiente que todavía no vence.
func (r *OutboxRepo) NextBatch(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT seq, collection, op, record_id, version, payload, status, attempts, last_error, next_attempt_at, created_at
		FROM sync_outbox
		WHERE status = $1 AND next_attempt_at <= $2
		  AND seq < COALESCE(
			(SELECT MIN(seq) FROM sync_outbox WHERE status = $1 AND next_attempt_at > $2),
			9223372036854775807)
		ORDER BY seq
		LIMIT $3`, entity.OutboxPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox next batch: %w", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEntry
	for rows.Next() {
		var e entity.OutboxEntry
		var payload []byte
		if err := rows.Scan(&e.Seq, &e.Collection, &e.Op, &e.RecordID, &e.Version, &payload, &e.Status,
			&e.Attempts, &e.LastError, &e.NextAttemptAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		e.Payload = payload
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkDone marca la entrada como aplicada en remoto.
func (r *OutboxRepo) MarkDone(ctx context.Context, seq int64) error {
	if _, err := r.q.Exec(ctx, `UPDATE sync_outbox SET status = $2, last_error = '' WHERE seq = $1`, seq, entity.OutboxDone); err != nil {
		return fmt.Errorf("outbox mark done: %w", err)
	}
	return nil
}

// MarkRetry reprograma la entrada tras un fallo transitorio.
func (r *OutboxRepo) MarkRetry(ctx context.Context, seq int64, attempts int, nextAttemptAt time.Time, lastErr string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sync_outbox SET attempts = $2, next_attempt_at = $3, last_error = $4 WHERE seq = $1`,
		seq, attempts, nextAttemptAt, lastErr)
	if err != nil {
		return fmt.Errorf("outbox mark retry: %w", err)
	}
	return nil
}

// MarkFinal deja la entrada en failed o conflict.
func (r *OutboxRepo) MarkFinal(ctx context.Context, seq int64, status, lastErr string) error {
	if _, err := r.q.Exec(ctx, `UPDATE sync_outbox SET status = $2, last_error = $3 WHERE seq = $1`, seq, status, lastErr); err != nil {
		return fmt.Errorf("outbox mark final: %w", err)
	}
	return nil
}

// Counts agrega por estado y devuelve el último error registrado.
func (r *OutboxRepo) Counts(ctx context.Context) (repository.OutboxCounts, error) {
	var c repository.OutboxCounts
	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'conflict'),
			COALESCE((SELECT last_error FROM sync_outbox WHERE status <> 'done' AND last_error <> '' ORDER BY seq DESC LIMIT 1), '')
		FROM sync_outbox`).Scan(&c.Pending, &c.Failed, &c.Conflicts, &c.LastError)
	if err != nil {
		return c, fmt.Errorf("outbox counts: %w", err)
	}
	return c, nil
}
