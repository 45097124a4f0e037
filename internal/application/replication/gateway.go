// Package replication espeja el estado local en el servicio remoto a partir de la outbox
// y carga el estado inicial cuando el almacén local está vacío.
package replication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Remote puerto del servicio de persistencia remoto.
type Remote interface {
	Fetch(ctx context.Context, collection string) ([]json.RawMessage, error)
	Upsert(ctx context.Context, collection string, payload json.RawMessage) error
	UpsertVersioned(ctx context.Context, collection, id string, version int64, payload json.RawMessage) error
	Delete(ctx context.Context, collection, key string) error
	Purge(ctx context.Context, collection string) error
}

// ErrDisabled la réplica remota no está configurada.
var ErrDisabled = errors.New("réplica remota deshabilitada")

const (
	baseBackoff = time.Second
	maxBackoff  = 5 * time.Minute
)

// Options parámetros del drenado.
type Options struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Gateway drena la outbox hacia el remoto. remote nil = deshabilitado; la outbox se conserva.
type Gateway struct {
	remote Remote
	outbox repository.OutboxRepository
	opts   Options
	log    zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex // serializa drenados
	stateMu     sync.RWMutex
	syncing     bool
	lastDrainAt *time.Time
}

// NewGateway construye el gateway con valores por defecto para las opciones en cero.
func NewGateway(remote Remote, outbox repository.OutboxRepository, opts Options, log zerolog.Logger) *Gateway {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 8
	}
	return &Gateway{
		remote: remote,
		outbox: outbox,
		opts:   opts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enabled indica si hay remoto configurado.
func (g *Gateway) Enabled() bool { return g.remote != nil }

// Backoff espera antes del intento número attempts (1s·2^(attempts-1), tope 5 min).
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// Run drena periódicamente hasta que ctx se cancela.
func (g *Gateway) Run(ctx context.Context) {
	if !g.Enabled() {
		g.log.Info().Msg("réplica remota deshabilitada; la outbox se acumula")
		return
	}
	ticker := time.NewTicker(g.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := g.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				g.log.Warn().Err(err).Msg("drenado de outbox")
			}
		}
	}
}

// Drain procesa las entradas vencidas. Se detiene en la primera que deba reintentarse para
// conservar el orden de escritura por registro. Devuelve cuántas entradas quedaron resueltas.
func (g *Gateway) Drain(ctx context.Context) (int, error) {
	return g.drain(ctx, false)
}

func (g *Gateway) drain(ctx context.Context, force bool) (int, error) {
	if !g.Enabled() {
		return 0, ErrDisabled
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setSyncing(true)
	defer g.setSyncing(false)

	processed := 0
	for {
		due := g.now()
		if force {
			due = due.Add(maxBackoff)
		}
		batch, err := g.outbox.NextBatch(ctx, due, g.opts.BatchSize)
		if err != nil {
			return processed, err
		}
		if len(batch) == 0 {
			g.markDrained()
			return processed, nil
		}
		for _, e := range batch {
			if err := ctx.Err(); err != nil {
				return processed, err
			}
			retry, err := g.process(ctx, e)
			if err != nil {
				return processed, err
			}
			if retry {
				return processed, nil
			}
			processed++
		}
	}
}

// process aplica una entrada y registra su resultado. retry=true si quedó pendiente de reintento.
func (g *Gateway) process(ctx context.Context, e *entity.OutboxEntry) (bool, error) {
	err := g.apply(ctx, e)
	log := g.log.With().Int64("seq", e.Seq).Str("collection", e.Collection).Str("op", e.Op).Str("record_id", e.RecordID).Logger()
	switch {
	case err == nil:
		return false, g.outbox.MarkDone(ctx, e.Seq)
	case errors.Is(err, domain.ErrVersionConflict):
		log.Error().Err(err).Msg("conflicto de versión remoto; la entrada no se reintenta")
		return false, g.outbox.MarkFinal(ctx, e.Seq, entity.OutboxConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		log.Error().Err(err).Msg("el remoto rechazó la entrada")
		return false, g.outbox.MarkFinal(ctx, e.Seq, entity.OutboxFailed, err.Error())
	}

	attempts := e.Attempts + 1
	if attempts >= g.opts.MaxAttempts {
		log.Error().Err(err).Int("attempts", attempts).Msg("entrada agotó los reintentos")
		return false, g.outbox.MarkFinal(ctx, e.Seq, entity.OutboxFailed, err.Error())
	}
	next := g.now().Add(Backoff(attempts))
	log.Warn().Err(err).Int("attempts", attempts).Time("next_attempt_at", next).Msg("réplica fallida; se reintentará")
	if mErr := g.outbox.MarkRetry(ctx, e.Seq, attempts, next, err.Error()); mErr != nil {
		return false, mErr
	}
	return true, nil
}

func (g *Gateway) apply(ctx context.Context, e *entity.OutboxEntry) error {
	switch e.Op {
	case entity.OutboxOpPurge:
		return g.remote.Purge(ctx, e.Collection)
	case entity.OutboxOpDelete:
		return g.remote.Delete(ctx, e.Collection, e.RecordID)
	case entity.OutboxOpUpsert:
		if e.Collection == entity.CollectionProducts && e.Version > 0 {
			return g.remote.UpsertVersioned(ctx, e.Collection, e.RecordID, e.Version, e.Payload)
		}
		return g.remote.Upsert(ctx, e.Collection, e.Payload)
	}
	return fmt.Errorf("operación de outbox desconocida %q: %w", e.Op, domain.ErrInvalidInput)
}

// Flush drena todo lo pendiente, incluso lo que espera backoff. nil = sincronización completa.
func (g *Gateway) Flush(ctx context.Context) error {
	if _, err := g.drain(ctx, true); err != nil {
		return err
	}
	counts, err := g.outbox.Counts(ctx)
	if err != nil {
		return err
	}
	switch {
	case counts.Conflicts > 0:
		return fmt.Errorf("%d entradas en conflicto: %w", counts.Conflicts, domain.ErrVersionConflict)
	case counts.Failed > 0 || counts.Pending > 0:
		return fmt.Errorf("sincronización incompleta: %d pendientes, %d fallidas: %s",
			counts.Pending, counts.Failed, counts.LastError)
	}
	return nil
}

// Status resumen de la outbox para los operadores.
func (g *Gateway) Status(ctx context.Context) (entity.SyncStatus, error) {
	counts, err := g.outbox.Counts(ctx)
	if err != nil {
		return entity.SyncStatus{}, err
	}
	g.stateMu.RLock()
	syncing, last := g.syncing, g.lastDrainAt
	g.stateMu.RUnlock()

	st := entity.SyncStatus{
		Pending:     counts.Pending,
		Failed:      counts.Failed,
		Conflicts:   counts.Conflicts,
		LastDrainAt: last,
		LastError:   counts.LastError,
	}
	switch {
	case !g.Enabled():
		st.State = entity.SyncDisabled
	case syncing:
		st.State = entity.SyncSyncing
	case counts.Failed > 0 || counts.Conflicts > 0:
		st.State = entity.SyncFailed
	case counts.Pending == 0 && last != nil:
		st.State = entity.SyncComplete
	default:
		st.State = entity.SyncIdle
	}
	return st, nil
}

func (g *Gateway) setSyncing(v bool) {
	g.stateMu.Lock()
	g.syncing = v
	g.stateMu.Unlock()
}

func (g *Gateway) markDrained() {
	now := g.now()
	g.stateMu.Lock()
	g.lastDrainAt = &now
	g.stateMu.Unlock()
}
