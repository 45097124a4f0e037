package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// ListCategories devuelve las categorías en orden de alta.
func (uc *UseCase) ListCategories(ctx context.Context) ([]string, error) {
	return uc.refs.List(ctx, entity.ReferenceCategory)
}

// AddCategory agrega una categoría y la replica.
func (uc *UseCase) AddCategory(ctx context.Context, name string) error {
	return uc.addReference(ctx, entity.ReferenceCategory, entity.CollectionCategories, strings.ToUpper(name))
}

// RemoveCategory elimina una categoría.
func (uc *UseCase) RemoveCategory(ctx context.Context, name string) error {
	return uc.removeReference(ctx, entity.ReferenceCategory, entity.CollectionCategories, strings.ToUpper(name))
}

// ListUnits devuelve las unidades en orden de alta.
func (uc *UseCase) ListUnits(ctx context.Context) ([]string, error) {
	return uc.refs.List(ctx, entity.ReferenceUnit)
}

// AddUnit agrega una unidad y la replica.
func (uc *UseCase) AddUnit(ctx context.Context, name string) error {
	return uc.addReference(ctx, entity.ReferenceUnit, entity.CollectionUnits, name)
}

// RemoveUnit elimina una unidad.
func (uc *UseCase) RemoveUnit(ctx context.Context, name string) error {
	return uc.removeReference(ctx, entity.ReferenceUnit, entity.CollectionUnits, name)
}

func (uc *UseCase) addReference(ctx context.Context, kind, collection, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.refs.Add(ctx, kind, name); err != nil {
		return err
	}
	return inventory.EnqueueReference(ctx, uc.outbox, collection, entity.OutboxOpUpsert, name)
}

func (uc *UseCase) removeReference(ctx context.Context, kind, collection, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.refs.Remove(ctx, kind, name); err != nil {
		return err
	}
	return inventory.EnqueueReference(ctx, uc.outbox, collection, entity.OutboxOpDelete, name)
}
