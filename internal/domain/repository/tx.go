package repository

// TxFunc callback que recibe repositorios atados a una misma transacción.
// Las mutaciones del inventario, el libro y la outbox se confirman o revierten juntas.
type TxFunc func(
	locations LocationRepository,
	catalog CatalogRepository,
	movements MovementRepository,
	outbox OutboxRepository,
) error
