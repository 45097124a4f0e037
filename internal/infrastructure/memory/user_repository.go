package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)
var _ repository.ReferenceRepository = (*ReferenceRepo)(nil)

// UserRepo usuarios indexados por ID; el nombre es único sin distinguir mayúsculas.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == user.ID || strings.EqualFold(u.Name, user.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *UserRepo) GetByName(ctx context.Context, name string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		list = append(list, copyUser(u))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ReferenceRepo categorías y unidades en orden de inserción.
type ReferenceRepo struct {
	s *Store
}

func (r *ReferenceRepo) List(ctx context.Context, kind string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]string(nil), r.s.refs[kind]...), nil
}

func (r *ReferenceRepo) Add(ctx context.Context, kind, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.refs[kind] {
		if n == name {
			return domain.ErrDuplicate
		}
	}
	r.s.refs[kind] = append(r.s.refs[kind], name)
	return nil
}

func (r *ReferenceRepo) Remove(ctx context.Context, kind, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.s.refs[kind]
	for i, n := range list {
		if n == name {
			r.s.refs[kind] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
