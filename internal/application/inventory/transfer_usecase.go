package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// TransferUseCase mueve cantidad entre dos direcciones del mismo SKU.
// Débito, crédito y el par de movimientos salida+entrada se aplican en una sola transacción.
type TransferUseCase struct {
	tx    TxRunner
	cache CacheInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewTransferUseCase construye el caso de uso. cache puede ser nil.
func NewTransferUseCase(tx TxRunner, cache CacheInvalidator, log zerolog.Logger) *TransferUseCase {
	return &TransferUseCase{tx: tx, cache: cache, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// TransferInput datos de un traslado.
type TransferInput struct {
	SourceID        string
	Quantity        decimal.Decimal
	Destination     entity.Address
	Responsible     string
	Observation     string
	ExpectedVersion *int64
}

// TransferResult estado final. Source es nil si el origen quedó en cero y se eliminó.
type TransferResult struct {
	TransferID  string
	Source      *entity.LocationRecord
	Destination *entity.LocationRecord
	Entry       *entity.CatalogEntry
	Exit        *entity.Movement
	Credit      *entity.Movement
}

// Transfer debita el origen y acredita el registro del destino (creándolo si no existe).
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	dest := in.Destination.Normalize()
	if in.SourceID == "" || !in.Quantity.IsPositive() || !entity.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if !dest.IsComplete() || dest.IsPending() {
		return nil, domain.ErrIncompleteAddress
	}

	now := uc.now()
	transferID := uuid.New().String()
	var res TransferResult
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		movements repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		src, err := debit(ctx, locations, in.SourceID, in.Quantity, in.ExpectedVersion, now)
		if err != nil {
			return err
		}
		if src.Address.Equal(dest) {
			return domain.ErrInvalidInput
		}
		entry, err := catalog.Get(ctx, src.Code)
		if err != nil {
			return err
		}
		srcAddr := src.Address

		kept, err := persistDebited(ctx, locations, outbox, src, entry)
		if err != nil {
			return err
		}
		dst, err := credit(ctx, locations, src.Code, dest, in.Quantity, now)
		if err != nil {
			return err
		}
		if err := EnqueueRecordUpsert(ctx, outbox, dst, entry); err != nil {
			return err
		}

		exit := &entity.Movement{
			ID:          uuid.New().String(),
			TransferID:  transferID,
			ProductID:   src.ID,
			Code:        src.Code,
			ProductName: nameOf(entry),
			Type:        entity.MovementTypeExit,
			Quantity:    in.Quantity,
			Date:        now,
			Origin:      entity.OriginTransfer,
			Responsible: in.Responsible,
			Observation: transferNote("Para", dest, in.Observation),
			Address:     srcAddr,
		}
		creditMov := &entity.Movement{
			ID:          uuid.New().String(),
			TransferID:  transferID,
			ProductID:   dst.ID,
			Code:        dst.Code,
			ProductName: nameOf(entry),
			Type:        entity.MovementTypeEntry,
			Quantity:    in.Quantity,
			Date:        now,
			Origin:      entity.OriginTransfer,
			Responsible: in.Responsible,
			Observation: transferNote("De", srcAddr, in.Observation),
			Address:     dst.Address,
		}
		for _, m := range []*entity.Movement{exit, creditMov} {
			if err := movements.Create(ctx, m); err != nil {
				return err
			}
			if err := EnqueueMovement(ctx, outbox, m); err != nil {
				return err
			}
		}

		removed, err := ConsumePlaceholder(ctx, locations, outbox, src.Code)
		if err != nil {
			return err
		}
		if kept != nil && kept.ID == removed {
			kept = nil
		}
		res = TransferResult{
			TransferID:  transferID,
			Source:      kept,
			Destination: dst,
			Entry:       entry,
			Exit:        exit,
			Credit:      creditMov,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, uc.log)
	return &res, nil
}

// transferNote arma la observación "Para R8-B B02" / "De R8-A B01" seguida de la nota del operador.
func transferNote(prefix string, addr entity.Address, note string) string {
	s := fmt.Sprintf("%s R%s B%s", prefix, addr.Street, addr.Block)
	if note = strings.TrimSpace(note); note != "" {
		s += " - " + note
	}
	return s
}
