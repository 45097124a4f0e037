package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// MovementFilter filtros del libro de movimientos. Limit <= 0 significa sin límite.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	Type   string
	Code   string
	Limit  int
	Offset int
}

// MovementRepository libro append-only de movimientos; no hay Update.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List ordena por fecha descendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	DeleteAll(ctx context.Context) error
}
