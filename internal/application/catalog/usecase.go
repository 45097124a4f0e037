// Package catalog implementa el gestor de catálogo: alta, edición y baja de SKUs,
// importación masiva, listas de referencia y resolución de lecturas del escáner.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// UseCase gestor del catálogo normalizado.
type UseCase struct {
	tx        inventory.TxRunner
	catalog   repository.CatalogRepository
	locations repository.LocationRepository
	refs      repository.ReferenceRepository
	outbox    repository.OutboxRepository
	cache     inventory.CacheInvalidator
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el gestor. Los repositorios sueltos se usan solo para lecturas
// y para las listas de referencia; toda mutación del inventario pasa por tx.
func NewUseCase(
	tx inventory.TxRunner,
	catalog repository.CatalogRepository,
	locations repository.LocationRepository,
	refs repository.ReferenceRepository,
	outbox repository.OutboxRepository,
	cache inventory.CacheInvalidator,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		tx:        tx,
		catalog:   catalog,
		locations: locations,
		refs:      refs,
		outbox:    outbox,
		cache:     cache,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput datos de alta de un SKU.
type CreateInput struct {
	Code        string
	Name        string
	Category    string
	Unit        string
	EAN         string
	Supplier    string
	Description string
	MinQuantity *decimal.Decimal
}

// UpdateInput campos editables; nil = sin cambio.
type UpdateInput struct {
	Name        *string
	Category    *string
	Unit        *string
	EAN         *string
	Supplier    *string
	Description *string
	MinQuantity *decimal.Decimal
}

// Create da de alta el SKU y su placeholder PENDING en cero. Nunca asigna stock real.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.CatalogEntry, *entity.LocationRecord, error) {
	code := entity.NormalizeCode(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	minQty := entity.DefaultMinQuantity
	if in.MinQuantity != nil {
		if in.MinQuantity.IsNegative() || !entity.ValidQuantity(*in.MinQuantity) {
			return nil, nil, domain.ErrInvalidInput
		}
		minQty = *in.MinQuantity
	}
	now := uc.now()
	entry := &entity.CatalogEntry{
		Code:        code,
		Name:        name,
		Category:    strings.TrimSpace(in.Category),
		Unit:        strings.TrimSpace(in.Unit),
		EAN:         strings.TrimSpace(in.EAN),
		Supplier:    strings.TrimSpace(in.Supplier),
		Description: strings.TrimSpace(in.Description),
		MinQuantity: minQty,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var placeholder *entity.LocationRecord
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		_ repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		existing, err := catalog.Get(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := catalog.Create(ctx, entry); err != nil {
			return err
		}
		placeholder, err = ensurePlaceholder(ctx, locations, outbox, entry, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	uc.invalidate(ctx)
	return entry, placeholder, nil
}

// ensurePlaceholder crea el registro PENDING en cero si el código no tiene ningún registro.
func ensurePlaceholder(ctx context.Context, locations repository.LocationRepository, outbox repository.OutboxRepository, entry *entity.CatalogEntry, now time.Time) (*entity.LocationRecord, error) {
	recs, err := locations.ListByCode(ctx, entry.Code)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		return nil, nil
	}
	rec := &entity.LocationRecord{
		ID:        uuid.New().String(),
		Code:      entry.Code,
		Quantity:  decimal.Zero,
		Address:   entity.PendingAddress(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := locations.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, inventory.EnqueueRecordUpsert(ctx, outbox, rec, entry)
}

// Edit modifica la entrada de catálogo del registro indicado. Todos los registros del código
// reflejan el cambio y se vuelven a replicar con una versión nueva.
func (uc *UseCase) Edit(ctx context.Context, recordID string, in UpdateInput) (*entity.CatalogEntry, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinQuantity != nil && (in.MinQuantity.IsNegative() || !entity.ValidQuantity(*in.MinQuantity)) {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var updated *entity.CatalogEntry
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		_ repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		rec, err := locations.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		entry, err := catalog.Get(ctx, rec.Code)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		applyUpdate(entry, in)
		entry.UpdatedAt = now
		if err := catalog.Update(ctx, entry); err != nil {
			return err
		}
		if err := republish(ctx, locations, outbox, entry, now); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return updated, nil
}

func applyUpdate(e *entity.CatalogEntry, in UpdateInput) {
	if in.Name != nil {
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if in.Unit != nil {
		e.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.EAN != nil {
		e.EAN = strings.TrimSpace(*in.EAN)
	}
	if in.Supplier != nil {
		e.Supplier = strings.TrimSpace(*in.Supplier)
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.MinQuantity != nil {
		e.MinQuantity = *in.MinQuantity
	}
}

// republish sube la versión de cada registro del código y encola su réplica.
func republish(ctx context.Context, locations repository.LocationRepository, outbox repository.OutboxRepository, entry *entity.CatalogEntry, now time.Time) error {
	recs, err := locations.ListByCode(ctx, entry.Code)
	if err != nil {
		return err
	}
	for _, r := range recs {
		locked, err := locations.GetForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			continue
		}
		locked.Touch(now)
		if err := locations.Update(ctx, locked); err != nil {
			return err
		}
		if err := inventory.EnqueueRecordUpsert(ctx, outbox, locked, entry); err != nil {
			return err
		}
	}
	return nil
}

// Delete elimina el SKU del registro indicado: todos sus registros y su entrada de catálogo.
// Se rechaza si cualquier registro del código, en cualquier dirección, tiene saldo.
func (uc *UseCase) Delete(ctx context.Context, recordID string) error {
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		_ repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		rec, err := locations.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		recs, err := locations.ListByCode(ctx, rec.Code)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if !r.Quantity.IsZero() {
				return domain.ErrStockRemaining
			}
		}
		for _, r := range recs {
			if err := locations.Delete(ctx, r.ID); err != nil {
				return err
			}
			if err := inventory.EnqueueRecordDelete(ctx, outbox, r.ID); err != nil {
				return err
			}
		}
		return catalog.Delete(ctx, rec.Code)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// ListEntries devuelve el catálogo completo.
func (uc *UseCase) ListEntries(ctx context.Context) ([]*entity.CatalogEntry, error) {
	return uc.catalog.List(ctx)
}

// ListRecords devuelve los registros filtrados junto al catálogo indexado por código.
func (uc *UseCase) ListRecords(ctx context.Context, filter repository.LocationFilter) ([]*entity.LocationRecord, map[string]*entity.CatalogEntry, error) {
	recs, err := uc.locations.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	entries, err := uc.catalogMap(ctx)
	if err != nil {
		return nil, nil, err
	}
	return recs, entries, nil
}

// GetRecord devuelve un registro y su entrada de catálogo.
func (uc *UseCase) GetRecord(ctx context.Context, id string) (*entity.LocationRecord, *entity.CatalogEntry, error) {
	rec, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, domain.ErrNotFound
	}
	entry, err := uc.catalog.Get(ctx, rec.Code)
	if err != nil {
		return nil, nil, err
	}
	return rec, entry, nil
}

// ResolveScan interpreta una lectura del escáner: etiqueta "SKU: ...", EAN, id de registro o código.
func (uc *UseCase) ResolveScan(ctx context.Context, text string) (*entity.CatalogEntry, []*entity.LocationRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	code, ok := domaininv.ParseLabelCode(text)
	if !ok {
		if e, err := uc.catalog.GetByEAN(ctx, text); err != nil {
			return nil, nil, err
		} else if e != nil {
			code = e.Code
		}
	}
	if code == "" {
		if rec, err := uc.locations.GetByID(ctx, text); err != nil {
			return nil, nil, err
		} else if rec != nil {
			code = rec.Code
		}
	}
	if code == "" {
		code = text
	}
	entry, err := uc.catalog.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, domain.ErrNotFound
	}
	recs, err := uc.locations.ListByCode(ctx, entry.Code)
	if err != nil {
		return nil, nil, err
	}
	return entry, recs, nil
}

func (uc *UseCase) catalogMap(ctx context.Context) (map[string]*entity.CatalogEntry, error) {
	entries, err := uc.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*entity.CatalogEntry, len(entries))
	for _, e := range entries {
		m[e.Code] = e
	}
	return m, nil
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar cache de consolidación")
	}
}
