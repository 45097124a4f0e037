// Package admin operaciones administrativas irreversibles.
package admin

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// ResetConfirmation texto que el administrador debe escribir para confirmar.
const ResetConfirmation = "RESET"

// ResetUseCase borra el inventario completo local y remoto.
type ResetUseCase struct {
	tx    inventory.TxRunner
	cache inventory.CacheInvalidator
	log   zerolog.Logger
}

// NewResetUseCase cache puede ser nil.
func NewResetUseCase(tx inventory.TxRunner, cache inventory.CacheInvalidator, log zerolog.Logger) *ResetUseCase {
	return &ResetUseCase{tx: tx, cache: cache, log: log}
}

// Reset elimina registros de ubicación, catálogo y movimientos, y encola la purga remota de
// products y transactions. Usuarios y listas de referencia se conservan.
func (uc *ResetUseCase) Reset(ctx context.Context, role, actor, confirm string) error {
	if role != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(confirm) != ResetConfirmation {
		return domain.ErrConfirmationRequired
	}
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		movements repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		if err := locations.DeleteAll(ctx); err != nil {
			return err
		}
		if err := catalog.DeleteAll(ctx); err != nil {
			return err
		}
		if err := movements.DeleteAll(ctx); err != nil {
			return err
		}
		if err := inventory.EnqueuePurge(ctx, outbox, entity.CollectionProducts); err != nil {
			return err
		}
		return inventory.EnqueuePurge(ctx, outbox, entity.CollectionTransactions)
	})
	if err != nil {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar cache de consolidación")
		}
	}
	uc.log.Warn().Str("actor", actor).Msg("inventario reiniciado")
	return nil
}
