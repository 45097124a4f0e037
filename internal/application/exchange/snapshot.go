package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// UseCase respaldo y restauración del estado local completo.
type UseCase struct {
	tx        inventory.TxRunner
	locations repository.LocationRepository
	catalog   repository.CatalogRepository
	movements repository.MovementRepository
	users     repository.UserRepository
	refs      repository.ReferenceRepository
	cache     inventory.CacheInvalidator
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase cache puede ser nil.
func NewUseCase(
	tx inventory.TxRunner,
	locations repository.LocationRepository,
	catalog repository.CatalogRepository,
	movements repository.MovementRepository,
	users repository.UserRepository,
	refs repository.ReferenceRepository,
	cache inventory.CacheInvalidator,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		tx:        tx,
		locations: locations,
		catalog:   catalog,
		movements: movements,
		users:     users,
		refs:      refs,
		cache:     cache,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export arma el snapshot completo. Los usuarios salen sin hash de contraseña.
func (uc *UseCase) Export(ctx context.Context) (dto.Snapshot, error) {
	recs, err := uc.locations.List(ctx, repository.LocationFilter{})
	if err != nil {
		return dto.Snapshot{}, err
	}
	entries, err := uc.catalogMap(ctx)
	if err != nil {
		return dto.Snapshot{}, err
	}
	movs, err := uc.movements.List(ctx, repository.MovementFilter{})
	if err != nil {
		return dto.Snapshot{}, err
	}
	users, err := uc.users.List(ctx)
	if err != nil {
		return dto.Snapshot{}, err
	}
	categories, err := uc.refs.List(ctx, entity.ReferenceCategory)
	if err != nil {
		return dto.Snapshot{}, err
	}
	units, err := uc.refs.List(ctx, entity.ReferenceUnit)
	if err != nil {
		return dto.Snapshot{}, err
	}

	snap := dto.Snapshot{
		Products:     make([]dto.ProductDoc, 0, len(recs)),
		Transactions: make([]dto.TransactionDoc, 0, len(movs)),
		Users:        make([]dto.UserDoc, 0, len(users)),
		Categories:   nonNil(categories),
		Units:        nonNil(units),
		Timestamp:    uc.now().UnixMilli(),
		V:            dto.SnapshotVersion,
	}
	for _, r := range recs {
		snap.Products = append(snap.Products, dto.NewProductDoc(r, entries[r.Code]))
	}
	for _, m := range movs {
		snap.Transactions = append(snap.Transactions, dto.NewTransactionDoc(m))
	}
	for _, u := range users {
		snap.Users = append(snap.Users, dto.NewUserDoc(u))
	}
	return snap, nil
}

// RestoreResult conteos de lo restaurado.
type RestoreResult struct {
	Products     int
	Transactions int
	Entries      int
}

// Restore reemplaza registros, catálogo y libro locales por el contenido del snapshot (sin fusión)
// y encola la purga y la recarga remota de products y transactions.
// Las filas del snapshot con el mismo (código, dirección) se unen sumando cantidades; las que
// quedan en cero fuera de PENDING se descartan. Un movimiento sin código toma el del producto
// cuyo id coincide con su productId.
// Categorías y unidades faltantes se agregan; los usuarios no se restauran porque el respaldo no
// lleva contraseñas.
func (uc *UseCase) Restore(ctx context.Context, snap dto.Snapshot) (RestoreResult, error) {
	for _, p := range snap.Products {
		if entity.NormalizeCode(p.Code) == "" || p.Quantity.IsNegative() || !entity.ValidQuantity(p.Quantity) {
			return RestoreResult{}, domain.ErrInvalidInput
		}
	}

	codes := dto.NewProductCodes(snap.Products)
	now := uc.now()
	var res RestoreResult
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		movements repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		res = RestoreResult{}
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
		if err := inventory.EnqueuePurge(ctx, outbox, entity.CollectionTransactions); err != nil {
			return err
		}

		entries := make(map[string]*entity.CatalogEntry)
		byKey := make(map[string]*entity.LocationRecord)
		var order []*entity.LocationRecord
		for _, p := range snap.Products {
			entry := p.Entry()
			if _, ok := entries[entry.Code]; !ok {
				stampEntry(entry, now)
				if err := catalog.Create(ctx, entry); err != nil {
					return err
				}
				entries[entry.Code] = entry
				res.Entries++
			}

			rec := p.Record()
			key := rec.Code + "|" + rec.Address.Key()
			if prev, ok := byKey[key]; ok {
				prev.Quantity = prev.Quantity.Add(rec.Quantity)
				continue
			}
			if rec.ID == "" {
				rec.ID = uuid.New().String()
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt, rec.UpdatedAt = now, now
			}
			byKey[key] = rec
			order = append(order, rec)
		}
		for _, rec := range order {
			// Tras sumar duplicados, un saldo cero fuera de PENDING no se conserva.
			if rec.ShouldPrune() {
				continue
			}
			if err := locations.Create(ctx, rec); err != nil {
				return err
			}
			if err := inventory.EnqueueRecordUpsert(ctx, outbox, rec, entries[rec.Code]); err != nil {
				return err
			}
			res.Products++
		}

		for _, t := range snap.Transactions {
			m := t.Movement()
			codes.Fill(m)
			if m.ID == "" {
				m.ID = uuid.New().String()
			}
			if err := movements.Create(ctx, m); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					continue
				}
				return err
			}
			if err := inventory.EnqueueMovement(ctx, outbox, m); err != nil {
				return err
			}
			res.Transactions++
		}
		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	uc.mergeReferences(ctx, entity.ReferenceCategory, snap.Categories)
	uc.mergeReferences(ctx, entity.ReferenceUnit, snap.Units)
	if len(snap.Users) > 0 {
		uc.log.Info().Int("users", len(snap.Users)).Msg("usuarios del respaldo ignorados")
	}
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar cache de consolidación")
		}
	}
	uc.log.Info().Int("products", res.Products).Int("transactions", res.Transactions).Msg("respaldo restaurado")
	return res, nil
}

func (uc *UseCase) mergeReferences(ctx context.Context, kind string, names []string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if err := uc.refs.Add(ctx, kind, n); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			uc.log.Warn().Err(err).Str("kind", kind).Str("name", n).Msg("restaurar referencia")
		}
	}
}

func stampEntry(e *entity.CatalogEntry, now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	if e.MinQuantity.IsZero() {
		e.MinQuantity = entity.DefaultMinQuantity
	}
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

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
