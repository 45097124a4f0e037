package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo implementación del catálogo normalizado (uno por SKU).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

const catalogColumns = `code, name, category, unit, ean, supplier, description, min_quantity, created_at, updated_at`

func scanCatalog(row pgx.Row) (*entity.CatalogEntry, error) {
	var e entity.CatalogEntry
	if err := row.Scan(&e.Code, &e.Name, &e.Category, &e.Unit, &e.EAN, &e.Supplier, &e.Description,
		&e.MinQuantity, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CatalogRepo) getOne(ctx context.Context, query string, arg string) (*entity.CatalogEntry, error) {
	e, err := scanCatalog(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	return e, nil
}

// Get obtiene la entrada por código.
func (r *CatalogRepo) Get(ctx context.Context, code string) (*entity.CatalogEntry, error) {
	return r.getOne(ctx, `SELECT `+catalogColumns+` FROM catalog_entries WHERE code = $1`, entity.NormalizeCode(code))
}

// GetByEAN obtiene la entrada por código de barras.
func (r *CatalogRepo) GetByEAN(ctx context.Context, ean string) (*entity.CatalogEntry, error) {
	if ean == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+catalogColumns+` FROM catalog_entries WHERE ean = $1 LIMIT 1`, ean)
}

// List lista el catálogo completo ordenado por código.
func (r *CatalogRepo) List(ctx context.Context) ([]*entity.CatalogEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_entries ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()
	var list []*entity.CatalogEntry
	for rows.Next() {
		e, err := scanCatalog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Create inserta una entrada; código repetido devuelve domain.ErrDuplicate.
func (r *CatalogRepo) Create(ctx context.Context, e *entity.CatalogEntry) error {
	e.Code = entity.NormalizeCode(e.Code)
	_, err := r.q.Exec(ctx, `
		INSERT INTO catalog_entries (`+catalogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.Code, e.Name, e.Category, e.Unit, e.EAN, e.Supplier, e.Description, e.MinQuantity, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert catalog entry: %w", err)
	}
	return nil
}

// Update actualiza los campos descriptivos.
func (r *CatalogRepo) Update(ctx context.Context, e *entity.CatalogEntry) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE catalog_entries
		SET name = $2, category = $3, unit = $4, ean = $5, supplier = $6, description = $7, min_quantity = $8, updated_at = $9
		WHERE code = $1`,
		entity.NormalizeCode(e.Code), e.Name, e.Category, e.Unit, e.EAN, e.Supplier, e.Description, e.MinQuantity, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update catalog entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la entrada de un código.
func (r *CatalogRepo) Delete(ctx context.Context, code string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM catalog_entries WHERE code = $1`, entity.NormalizeCode(code)); err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	return nil
}

// DeleteAll vacía el catálogo.
func (r *CatalogRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("delete all catalog entries: %w", err)
	}
	return nil
}
