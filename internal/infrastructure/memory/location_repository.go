package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo registros por código+dirección.
type LocationRepo struct {
	s    *Store
	inTx bool
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.LocationRecord, error) {
	defer r.s.lock(r.inTx)()
	rec, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return copyLocation(rec), nil
}

// GetForUpdate equivale a GetByID: el mutex del Store ya serializa la transacción.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.LocationRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *LocationRepo) FindByCodeAndAddress(ctx context.Context, code string, addr entity.Address) (*entity.LocationRecord, error) {
	defer r.s.lock(r.inTx)()
	code = entity.NormalizeCode(code)
	key := addr.Key()
	for _, rec := range r.s.locations {
		if rec.Code == code && rec.Address.Key() == key {
			return copyLocation(rec), nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) ListByCode(ctx context.Context, code string) ([]*entity.LocationRecord, error) {
	return r.List(ctx, repository.LocationFilter{Code: code})
}

func (r *LocationRepo) List(ctx context.Context, filter repository.LocationFilter) ([]*entity.LocationRecord, error) {
	defer r.s.lock(r.inTx)()
	code := entity.NormalizeCode(filter.Code)
	street := entity.Address{Street: filter.Street}.Normalize().Street
	var list []*entity.LocationRecord
	for _, rec := range r.s.locations {
		if code != "" && rec.Code != code {
			continue
		}
		if street != "" && rec.Address.Street != street {
			continue
		}
		list = append(list, copyLocation(rec))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Code != list[j].Code {
			return list[i].Code < list[j].Code
		}
		return list[i].Address.Key() < list[j].Address.Key()
	})
	return list, nil
}

func (r *LocationRepo) Create(ctx context.Context, rec *entity.LocationRecord) error {
	defer r.s.lock(r.inTx)()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Code = entity.NormalizeCode(rec.Code)
	rec.Address = rec.Address.Normalize()
	if _, ok := r.s.locations[rec.ID]; ok {
		return domain.ErrDuplicate
	}
	key := rec.Address.Key()
	for _, other := range r.s.locations {
		if other.Code == rec.Code && other.Address.Key() == key {
			return domain.ErrDuplicate
		}
	}
	r.s.locations[rec.ID] = copyLocation(rec)
	return nil
}

func (r *LocationRepo) Update(ctx context.Context, rec *entity.LocationRecord) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.locations[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	rec.Address = rec.Address.Normalize()
	r.s.locations[rec.ID] = copyLocation(rec)
	return nil
}

func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	delete(r.s.locations, id)
	return nil
}

func (r *LocationRepo) DeleteAll(ctx context.Context) error {
	defer r.s.lock(r.inTx)()
	r.s.locations = make(map[string]*entity.LocationRecord)
	return nil
}
