package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro append-only.
type MovementRepo struct {
	s    *Store
	inTx bool
}

func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	defer r.s.lock(r.inTx)()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	for _, m := range r.s.movements {
		if m.ID == movement.ID {
			return domain.ErrDuplicate
		}
	}
	r.s.movements = append(r.s.movements, copyMovement(movement))
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	defer r.s.lock(r.inTx)()
	for _, m := range r.s.movements {
		if m.ID == id {
			return copyMovement(m), nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	defer r.s.lock(r.inTx)()
	code := entity.NormalizeCode(filter.Code)
	var list []*entity.Movement
	for _, m := range r.s.movements {
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if code != "" && m.Code != code {
			continue
		}
		list = append(list, copyMovement(m))
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })

	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			return nil, nil
		}
		list = list[filter.Offset:]
	}
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r *MovementRepo) DeleteAll(ctx context.Context) error {
	defer r.s.lock(r.inTx)()
	r.s.movements = nil
	return nil
}
