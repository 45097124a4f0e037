package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.ReferenceRepository = (*ReferenceRepo)(nil)

// ReferenceRepo categorías y unidades en la tabla reference_items.
type ReferenceRepo struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository construye el adaptador.
func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepo {
	return &ReferenceRepo{pool: pool}
}

// List devuelve los nombres de un tipo en orden de alta.
func (r *ReferenceRepo) List(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM reference_items WHERE kind = $1 ORDER BY sort_order`, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Add inserta un nombre; repetido devuelve domain.ErrDuplicate.
func (r *ReferenceRepo) Add(ctx context.Context, kind, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO reference_items (kind, name) VALUES ($1, $2)`, kind, name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("add %s: %w", kind, err)
	}
	return nil
}

// Remove elimina un nombre.
func (r *ReferenceRepo) Remove(ctx context.Context, kind, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reference_items WHERE kind = $1 AND name = $2`, kind, name)
	if err != nil {
		return fmt.Errorf("remove %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
