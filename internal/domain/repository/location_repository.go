package repository

import (
	"context"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// LocationFilter filtros opcionales para listar registros por dirección.
type LocationFilter struct {
	Code   string
	Street string
}

// LocationRepository puerto de persistencia de LocationRecord (uno por código+dirección).
// Get* devuelven (nil, nil) cuando no existe el registro.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.LocationRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.LocationRecord, error)
	// FindByCodeAndAddress también bloquea la fila si existe.
	FindByCodeAndAddress(ctx context.Context, code string, addr entity.Address) (*entity.LocationRecord, error)
	ListByCode(ctx context.Context, code string) ([]*entity.LocationRecord, error)
	List(ctx context.Context, filter LocationFilter) ([]*entity.LocationRecord, error)
	Create(ctx context.Context, rec *entity.LocationRecord) error
	Update(ctx context.Context, rec *entity.LocationRecord) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
