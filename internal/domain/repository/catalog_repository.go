package repository

import (
	"context"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// CatalogRepository puerto de persistencia de CatalogEntry (uno por SKU).
type CatalogRepository interface {
	Get(ctx context.Context, code string) (*entity.CatalogEntry, error)
	GetByEAN(ctx context.Context, ean string) (*entity.CatalogEntry, error)
	List(ctx context.Context) ([]*entity.CatalogEntry, error)
	Create(ctx context.Context, entry *entity.CatalogEntry) error
	Update(ctx context.Context, entry *entity.CatalogEntry) error
	Delete(ctx context.Context, code string) error
	DeleteAll(ctx context.Context) error
}
