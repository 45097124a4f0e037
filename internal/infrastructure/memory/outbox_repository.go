package memory

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola de sincronización en orden de Seq.
type OutboxRepo struct {
	s    *Store
	inTx bool
}

func (r *OutboxRepo) Enqueue(ctx context.Context, entry *entity.OutboxEntry) error {
	defer r.s.lock(r.inTx)()
	r.s.seq++
	entry.Seq = r.s.seq
	if entry.Status == "" {
		entry.Status = entity.OutboxPending
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.NextAttemptAt.IsZero() {
		entry.NextAttemptAt = entry.CreatedAt
	}
	r.s.outbox = append(r.s.outbox, copyOutbox(entry))
	return nil
}

func (r *OutboxRepo) NextBatch(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error) {
	defer r.s.lock(r.inTx)()
	var batch []*entity.OutboxEntry
	for _, e := range r.s.outbox {
		if e.Status != entity.OutboxPending {
			continue
		}
		// La cabeza en espera de reintento bloquea todo lo posterior.
		if e.NextAttemptAt.After(now) {
			break
		}
		batch = append(batch, copyOutbox(e))
		if limit > 0 && len(batch) == limit {
			break
		}
	}
	return batch, nil
}

func (r *OutboxRepo) find(seq int64) (*entity.OutboxEntry, error) {
	for _, e := range r.s.outbox {
		if e.Seq == seq {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *OutboxRepo) MarkDone(ctx context.Context, seq int64) error {
	defer r.s.lock(r.inTx)()
	e, err := r.find(seq)
	if err != nil {
		return err
	}
	e.Status = entity.OutboxDone
	e.LastError = ""
	return nil
}

func (r *OutboxRepo) MarkRetry(ctx context.Context, seq int64, attempts int, nextAttemptAt time.Time, lastErr string) error {
	defer r.s.lock(r.inTx)()
	e, err := r.find(seq)
	if err != nil {
		return err
	}
	e.Attempts = attempts
	e.NextAttemptAt = nextAttemptAt
	e.LastError = lastErr
	return nil
}

func (r *OutboxRepo) MarkFinal(ctx context.Context, seq int64, status, lastErr string) error {
	defer r.s.lock(r.inTx)()
	e, err := r.find(seq)
	if err != nil {
		return err
	}
	e.Status = status
	e.LastError = lastErr
	return nil
}

func (r *OutboxRepo) Counts(ctx context.Context) (repository.OutboxCounts, error) {
	defer r.s.lock(r.inTx)()
	var c repository.OutboxCounts
	for _, e := range r.s.outbox {
		switch e.Status {
		case entity.OutboxPending:
			c.Pending++
		case entity.OutboxFailed:
			c.Failed++
		case entity.OutboxConflict:
			c.Conflicts++
		}
		if e.LastError != "" && e.Status != entity.OutboxDone {
			c.LastError = e.LastError
		}
	}
	return c, nil
}
