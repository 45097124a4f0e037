package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, code, quantity, addr_street, addr_block, addr_level, addr_position, version, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.LocationRecord, error) {
	var rec entity.LocationRecord
	err := row.Scan(&rec.ID, &rec.Code, &rec.Quantity,
		&rec.Address.Street, &rec.Address.Block, &rec.Address.Level, &rec.Address.Position,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *LocationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.LocationRecord, error) {
	rec, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location record: %w", err)
	}
	return rec, nil
}

// GetByID obtiene un registro por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.LocationRecord, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM location_records WHERE id = $1`, id)
}

// GetForUpdate obtiene el registro con bloqueo de fila (SELECT FOR UPDATE) para serializar movimientos.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.LocationRecord, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM location_records WHERE id = $1 FOR UPDATE`, id)
}

// FindByCodeAndAddress busca el registro único de (code, dirección) y lo bloquea.
func (r *LocationRepo) FindByCodeAndAddress(ctx context.Context, code string, addr entity.Address) (*entity.LocationRecord, error) {
	a := addr.Normalize()
	return r.getOne(ctx, `
		SELECT `+locationColumns+` FROM location_records
		WHERE code = $1 AND addr_street = $2 AND addr_block = $3 AND addr_level = $4 AND addr_position = $5
		FOR UPDATE`,
		entity.NormalizeCode(code), a.Street, a.Block, a.Level, a.Position)
}

// ListByCode lista todos los registros de un SKU.
func (r *LocationRepo) ListByCode(ctx context.Context, code string) ([]*entity.LocationRecord, error) {
	return r.List(ctx, repository.LocationFilter{Code: code})
}

// List lista registros con filtros opcionales por código y calle.
func (r *LocationRepo) List(ctx context.Context, filter repository.LocationFilter) ([]*entity.LocationRecord, error) {
	query := `SELECT ` + locationColumns + ` FROM location_records WHERE 1=1`
	var args []any
	pos := 1
	if filter.Code != "" {
		query += fmt.Sprintf(" AND code = $%d", pos)
		args = append(args, entity.NormalizeCode(filter.Code))
		pos++
	}
	if filter.Street != "" {
		query += fmt.Sprintf(" AND addr_street = $%d", pos)
		args = append(args, entity.Address{Street: filter.Street}.Normalize().Street)
	}
	query += " ORDER BY code, addr_street, addr_block, addr_level, addr_position"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list location records: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationRecord
	for rows.Next() {
		rec, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Create inserta un registro; (code, dirección) duplicado devuelve domain.ErrDuplicate.
func (r *LocationRepo) Create(ctx context.Context, rec *entity.LocationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Code = entity.NormalizeCode(rec.Code)
	rec.Address = rec.Address.Normalize()
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_records (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.Code, rec.Quantity,
		rec.Address.Street, rec.Address.Block, rec.Address.Level, rec.Address.Position,
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("insert location record: %w", err)
	}
	return nil
}

// Update persiste cantidad, dirección y versión.
func (r *LocationRepo) Update(ctx context.Context, rec *entity.LocationRecord) error {
	rec.Address = rec.Address.Normalize()
	tag, err := r.q.Exec(ctx, `
		UPDATE location_records
		SET quantity = $2, addr_street = $3, addr_block = $4, addr_level = $5, addr_position = $6,
		    version = $7, updated_at = $8
		WHERE id = $1`,
		rec.ID, rec.Quantity,
		rec.Address.Street, rec.Address.Block, rec.Address.Level, rec.Address.Position,
		rec.Version, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update location record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un registro por ID.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM location_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete location record: %w", err)
	}
	return nil
}

// DeleteAll vacía la tabla (reset administrativo).
func (r *LocationRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM location_records`); err != nil {
		return fmt.Errorf("delete all location records: %w", err)
	}
	return nil
}
