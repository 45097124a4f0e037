package repository

import "context"

// ReferenceRepository listas de referencia (categorías y unidades) indexadas por tipo.
type ReferenceRepository interface {
	List(ctx context.Context, kind string) ([]string, error)
	Add(ctx context.Context, kind, name string) error
	Remove(ctx context.Context, kind, name string) error
}
