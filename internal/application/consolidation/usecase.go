// Package consolidation deriva totales por SKU, alertas de bajo stock y reportes a partir
// de los registros de ubicación. No guarda estado propio; la cache es opcional.
package consolidation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Cache guarda los totales ya calculados. Un error de cache nunca impide responder.
type Cache interface {
	GetTotals(ctx context.Context) ([]inventory.SKUTotal, bool, error)
	SetTotals(ctx context.Context, totals []inventory.SKUTotal) error
	Invalidate(ctx context.Context) error
}

// recentMovements cantidad de movimientos recientes del tablero.
const recentMovements = 5

// UseCase motor de consolidación.
type UseCase struct {
	locations  repository.LocationRepository
	catalog    repository.CatalogRepository
	movements  repository.MovementRepository
	cache      Cache
	windowDays int
	log        zerolog.Logger
}

// NewUseCase construye el motor. cache puede ser nil; windowDays <= 0 usa 30.
func NewUseCase(
	locations repository.LocationRepository,
	catalog repository.CatalogRepository,
	movements repository.MovementRepository,
	cache Cache,
	windowDays int,
	log zerolog.Logger,
) *UseCase {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &UseCase{
		locations:  locations,
		catalog:    catalog,
		movements:  movements,
		cache:      cache,
		windowDays: windowDays,
		log:        log,
	}
}

// Totals devuelve el total consolidado de cada SKU.
func (uc *UseCase) Totals(ctx context.Context) ([]inventory.SKUTotal, error) {
	if uc.cache != nil {
		totals, ok, err := uc.cache.GetTotals(ctx)
		if err != nil {
			uc.log.Warn().Err(err).Msg("leer cache de consolidación")
		} else if ok {
			return totals, nil
		}
	}

	recs, err := uc.locations.List(ctx, repository.LocationFilter{})
	if err != nil {
		return nil, err
	}
	entries, err := uc.catalogMap(ctx)
	if err != nil {
		return nil, err
	}
	totals := inventory.Consolidate(recs, entries)

	if uc.cache != nil {
		if err := uc.cache.SetTotals(ctx, totals); err != nil {
			uc.log.Warn().Err(err).Msg("guardar cache de consolidación")
		}
	}
	return totals, nil
}

// Total devuelve el total de un SKU.
func (uc *UseCase) Total(ctx context.Context, code string) (*inventory.SKUTotal, error) {
	code = entity.NormalizeCode(code)
	totals, err := uc.Totals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range totals {
		if totals[i].Code == code {
			return &totals[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// LowStock devuelve los SKUs con total <= mínimo.
func (uc *UseCase) LowStock(ctx context.Context) ([]inventory.SKUTotal, error) {
	totals, err := uc.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.LowStockOnly(totals), nil
}

// CategoryExits suma las salidas por categoría en la ventana que termina en now.
func (uc *UseCase) CategoryExits(ctx context.Context, now time.Time) ([]inventory.CategoryExit, error) {
	since := now.AddDate(0, 0, -uc.windowDays)
	movs, err := uc.movements.List(ctx, repository.MovementFilter{From: &since, To: &now, Type: entity.MovementTypeExit})
	if err != nil {
		return nil, err
	}
	entries, err := uc.catalogMap(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.CategoryExits(movs, entries, since), nil
}

// Dashboard datos agregados del tablero.
type Dashboard struct {
	Summary       inventory.Summary
	LowStock      []inventory.SKUTotal
	CategoryExits []inventory.CategoryExit
	Recent        []*entity.Movement
}

// Dashboard arma el tablero: resumen, bajo stock, salidas por categoría y últimos movimientos.
func (uc *UseCase) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	totals, err := uc.Totals(ctx)
	if err != nil {
		return nil, err
	}
	exits, err := uc.CategoryExits(ctx, now)
	if err != nil {
		return nil, err
	}
	recent, err := uc.movements.List(ctx, repository.MovementFilter{Limit: recentMovements})
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Summary:       inventory.Summarize(totals),
		LowStock:      inventory.LowStockOnly(totals),
		CategoryExits: exits,
		Recent:        recent,
	}, nil
}

// Invalidate descarta la cache; lo llaman los coordinadores tras cada mutación.
func (uc *UseCase) Invalidate(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Invalidate(ctx)
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
