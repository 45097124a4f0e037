package inventory

import (
	"context"

	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Inventario, libro de movimientos y outbox se confirman o revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn repository.TxFunc) error
}

// CacheInvalidator descarta la consolidación cacheada tras una mutación.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
