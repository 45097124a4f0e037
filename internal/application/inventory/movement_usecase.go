package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// MovementUseCase registra entradas y salidas sobre registros de ubicación.
// Cada operación bloquea la fila afectada, aplica el saldo, agrega el movimiento al libro
// y encola la réplica remota dentro de la misma transacción.
type MovementUseCase struct {
	tx    TxRunner
	cache CacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewMovementUseCase construye el caso de uso. cache puede ser nil.
func NewMovementUseCase(tx TxRunner, cache CacheInvalidator, log zerolog.Logger) *MovementUseCase {
	return &MovementUseCase{tx: tx, cache: cache, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// EntryInput datos de una entrada.
type EntryInput struct {
	Code        string
	Quantity    decimal.Decimal
	Address     entity.Address
	Origin      string // por defecto compra
	Responsible string
	Observation string
}

// ExitInput datos de una salida.
type ExitInput struct {
	RecordID        string
	Quantity        decimal.Decimal
	Origin          string // por defecto venda
	Responsible     string
	Observation     string
	ExpectedVersion *int64
}

// MovementResult estado resultante. Record es nil si el registro quedó en cero y se eliminó.
type MovementResult struct {
	Record   *entity.LocationRecord
	Entry    *entity.CatalogEntry
	Movement *entity.Movement
}

// Entry suma cantidad al registro (code, dirección), creándolo si no existe.
func (uc *MovementUseCase) Entry(ctx context.Context, in EntryInput) (*MovementResult, error) {
	code := entity.NormalizeCode(in.Code)
	addr := in.Address.Normalize()
	origin := in.Origin
	if origin == "" {
		origin = entity.OriginPurchase
	}
	if code == "" || !in.Quantity.IsPositive() || !entity.ValidQuantity(in.Quantity) || !entity.ValidOrigin(origin) {
		return nil, domain.ErrInvalidInput
	}
	if !addr.IsComplete() {
		return nil, domain.ErrIncompleteAddress
	}

	now := uc.now()
	var res MovementResult
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		movements repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		entry, err := catalog.Get(ctx, code)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		rec, err := credit(ctx, locations, code, addr, in.Quantity, now)
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:          uuid.New().String(),
			ProductID:   rec.ID,
			Code:        code,
			ProductName: entry.Name,
			Type:        entity.MovementTypeEntry,
			Quantity:    in.Quantity,
			Date:        now,
			Origin:      origin,
			Responsible: in.Responsible,
			Observation: in.Observation,
			Address:     rec.Address,
		}
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}
		if err := EnqueueRecordUpsert(ctx, outbox, rec, entry); err != nil {
			return err
		}
		if err := EnqueueMovement(ctx, outbox, mov); err != nil {
			return err
		}
		if !addr.IsPending() {
			if _, err := ConsumePlaceholder(ctx, locations, outbox, code); err != nil {
				return err
			}
		}
		res = MovementResult{Record: rec, Entry: entry, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return &res, nil
}

// Exit descuenta cantidad de un registro. Rechaza sin cambios si excede el saldo.
func (uc *MovementUseCase) Exit(ctx context.Context, in ExitInput) (*MovementResult, error) {
	origin := in.Origin
	if origin == "" {
		origin = entity.OriginSale
	}
	if in.RecordID == "" || !in.Quantity.IsPositive() || !entity.ValidQuantity(in.Quantity) || !entity.ValidOrigin(origin) {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	var res MovementResult
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		movements repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		rec, err := debit(ctx, locations, in.RecordID, in.Quantity, in.ExpectedVersion, now)
		if err != nil {
			return err
		}
		entry, err := catalog.Get(ctx, rec.Code)
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:          uuid.New().String(),
			ProductID:   rec.ID,
			Code:        rec.Code,
			ProductName: nameOf(entry),
			Type:        entity.MovementTypeExit,
			Quantity:    in.Quantity,
			Date:        now,
			Origin:      origin,
			Responsible: in.Responsible,
			Observation: in.Observation,
			Address:     rec.Address,
		}
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}
		if err := EnqueueMovement(ctx, outbox, mov); err != nil {
			return err
		}
		kept, err := persistDebited(ctx, locations, outbox, rec, entry)
		if err != nil {
			return err
		}
		res = MovementResult{Record: kept, Entry: entry, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return &res, nil
}

func (uc *MovementUseCase) invalidate(ctx context.Context) {
	invalidate(ctx, uc.cache, uc.log)
}

func invalidate(ctx context.Context, cache CacheInvalidator, log zerolog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("invalidar cache de consolidación")
	}
}

func nameOf(entry *entity.CatalogEntry) string {
	if entry == nil {
		return ""
	}
	return entry.Name
}

// credit suma qty al registro (code, addr) o lo crea. El registro queda persistido.
func credit(ctx context.Context, locations repository.LocationRepository, code string, addr entity.Address, qty decimal.Decimal, now time.Time) (*entity.LocationRecord, error) {
	rec, err := locations.FindByCodeAndAddress(ctx, code, addr)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &entity.LocationRecord{
			ID:        uuid.New().String(),
			Code:      code,
			Quantity:  qty,
			Address:   addr,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := locations.Create(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, domain.ErrConflict
			}
			return nil, err
		}
		return rec, nil
	}
	rec.Quantity = rec.Quantity.Add(qty)
	rec.Touch(now)
	if err := locations.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// debit bloquea el registro y descuenta qty en memoria; la persistencia la hace persistDebited.
func debit(ctx context.Context, locations repository.LocationRepository, id string, qty decimal.Decimal, expected *int64, now time.Time) (*entity.LocationRecord, error) {
	rec, err := locations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if expected != nil && *expected != rec.Version {
		return nil, domain.ErrVersionConflict
	}
	if rec.Quantity.LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}
	rec.Quantity = rec.Quantity.Sub(qty)
	rec.Touch(now)
	return rec, nil
}

// persistDebited actualiza el registro o lo elimina si quedó en cero (salvo el placeholder).
// Devuelve nil cuando el registro fue eliminado.
func persistDebited(ctx context.Context, locations repository.LocationRepository, outbox repository.OutboxRepository, rec *entity.LocationRecord, entry *entity.CatalogEntry) (*entity.LocationRecord, error) {
	if rec.ShouldPrune() {
		if err := locations.Delete(ctx, rec.ID); err != nil {
			return nil, err
		}
		return nil, EnqueueRecordDelete(ctx, outbox, rec.ID)
	}
	if err := locations.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, EnqueueRecordUpsert(ctx, outbox, rec, entry)
}

// ConsumePlaceholder elimina el placeholder PENDING en cero del código, si existe.
// Devuelve el id eliminado o "".
func ConsumePlaceholder(ctx context.Context, locations repository.LocationRepository, outbox repository.OutboxRepository, code string) (string, error) {
	placeholder, err := locations.FindByCodeAndAddress(ctx, code, entity.PendingAddress())
	if err != nil || placeholder == nil || !placeholder.Quantity.IsZero() {
		return "", err
	}
	if err := locations.Delete(ctx, placeholder.ID); err != nil {
		return "", err
	}
	return placeholder.ID, EnqueueRecordDelete(ctx, outbox, placeholder.ID)
}
