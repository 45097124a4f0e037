package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Helpers de la outbox compartidos por todos los escritores del inventario.
// Siempre se llaman dentro de la transacción de la mutación.

func enqueue(ctx context.Context, outbox repository.OutboxRepository, e *entity.OutboxEntry, payload any) error {
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("outbox payload: %w", err)
		}
		e.Payload = raw
	}
	return outbox.Enqueue(ctx, e)
}

// EnqueueRecordUpsert replica un registro (desnormalizado con su catálogo) con control de versión.
func EnqueueRecordUpsert(ctx context.Context, outbox repository.OutboxRepository, rec *entity.LocationRecord, entry *entity.CatalogEntry) error {
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: entity.CollectionProducts,
		Op:         entity.OutboxOpUpsert,
		RecordID:   rec.ID,
		Version:    rec.Version,
	}, dto.NewProductDoc(rec, entry))
}

// EnqueueRecordDelete elimina un registro en remoto.
func EnqueueRecordDelete(ctx context.Context, outbox repository.OutboxRepository, id string) error {
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: entity.CollectionProducts,
		Op:         entity.OutboxOpDelete,
		RecordID:   id,
	}, nil)
}

// EnqueueMovement replica un movimiento; el id hace idempotente el reintento.
func EnqueueMovement(ctx context.Context, outbox repository.OutboxRepository, m *entity.Movement) error {
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: entity.CollectionTransactions,
		Op:         entity.OutboxOpUpsert,
		RecordID:   m.ID,
	}, dto.NewTransactionDoc(m))
}

// EnqueueUser replica un usuario sin su contraseña.
func EnqueueUser(ctx context.Context, outbox repository.OutboxRepository, u *entity.User) error {
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: entity.CollectionUsers,
		Op:         entity.OutboxOpUpsert,
		RecordID:   u.ID,
	}, dto.NewUserDoc(u))
}

// EnqueueReference replica el alta o baja de una categoría o unidad.
func EnqueueReference(ctx context.Context, outbox repository.OutboxRepository, collection, op, name string) error {
	var payload any
	if op == entity.OutboxOpUpsert {
		payload = dto.ReferenceDoc{Name: name}
	}
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: collection,
		Op:         op,
		RecordID:   name,
	}, payload)
}

// EnqueuePurge vacía una colección remota completa.
func EnqueuePurge(ctx context.Context, outbox repository.OutboxRepository, collection string) error {
	return enqueue(ctx, outbox, &entity.OutboxEntry{
		Collection: collection,
		Op:         entity.OutboxOpPurge,
	}, nil)
}
