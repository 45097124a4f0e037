package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo metadatos por SKU.
type CatalogRepo struct {
	s    *Store
	inTx bool
}

func (r *CatalogRepo) Get(ctx context.Context, code string) (*entity.CatalogEntry, error) {
	defer r.s.lock(r.inTx)()
	e, ok := r.s.catalog[entity.NormalizeCode(code)]
	if !ok {
		return nil, nil
	}
	return copyCatalog(e), nil
}

func (r *CatalogRepo) GetByEAN(ctx context.Context, ean string) (*entity.CatalogEntry, error) {
	defer r.s.lock(r.inTx)()
	if ean == "" {
		return nil, nil
	}
	for _, e := range r.s.catalog {
		if e.EAN == ean {
			return copyCatalog(e), nil
		}
	}
	return nil, nil
}

func (r *CatalogRepo) List(ctx context.Context) ([]*entity.CatalogEntry, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.CatalogEntry, 0, len(r.s.catalog))
	for _, e := range r.s.catalog {
		list = append(list, copyCatalog(e))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *CatalogRepo) Create(ctx context.Context, entry *entity.CatalogEntry) error {
	defer r.s.lock(r.inTx)()
	entry.Code = entity.NormalizeCode(entry.Code)
	if _, ok := r.s.catalog[entry.Code]; ok {
		return domain.ErrDuplicate
	}
	r.s.catalog[entry.Code] = copyCatalog(entry)
	return nil
}

func (r *CatalogRepo) Update(ctx context.Context, entry *entity.CatalogEntry) error {
	defer r.s.lock(r.inTx)()
	entry.Code = entity.NormalizeCode(entry.Code)
	if _, ok := r.s.catalog[entry.Code]; !ok {
		return domain.ErrNotFound
	}
	r.s.catalog[entry.Code] = copyCatalog(entry)
	return nil
}

func (r *CatalogRepo) Delete(ctx context.Context, code string) error {
	defer r.s.lock(r.inTx)()
	delete(r.s.catalog, entity.NormalizeCode(code))
	return nil
}

func (r *CatalogRepo) DeleteAll(ctx context.Context) error {
	defer r.s.lock(r.inTx)()
	r.s.catalog = make(map[string]*entity.CatalogEntry)
	return nil
}
