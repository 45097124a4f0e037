// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Store guarda todo el estado del almacén bajo un único mutex.
// Run ejecuta el callback con el mutex tomado y restaura una copia del estado si falla.
type Store struct {
	mu sync.Mutex

	locations map[string]*entity.LocationRecord
	catalog   map[string]*entity.CatalogEntry
	movements []*entity.Movement
	outbox    []*entity.OutboxEntry
	seq       int64
	users     map[string]*entity.User
	refs      map[string][]string
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		locations: make(map[string]*entity.LocationRecord),
		catalog:   make(map[string]*entity.CatalogEntry),
		users:     make(map[string]*entity.User),
		refs:      make(map[string][]string),
	}
}

type snapshot struct {
	locations map[string]*entity.LocationRecord
	catalog   map[string]*entity.CatalogEntry
	movements []*entity.Movement
	outbox    []*entity.OutboxEntry
	seq       int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		locations: make(map[string]*entity.LocationRecord, len(s.locations)),
		catalog:   make(map[string]*entity.CatalogEntry, len(s.catalog)),
		movements: append([]*entity.Movement(nil), s.movements...),
		outbox:    make([]*entity.OutboxEntry, len(s.outbox)),
		seq:       s.seq,
	}
	for k, v := range s.locations {
		snap.locations[k] = copyLocation(v)
	}
	for k, v := range s.catalog {
		snap.catalog[k] = copyCatalog(v)
	}
	for i, e := range s.outbox {
		snap.outbox[i] = copyOutbox(e)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.locations = snap.locations
	s.catalog = snap.catalog
	s.movements = snap.movements
	s.outbox = snap.outbox
	s.seq = snap.seq
}

// Run ejecuta fn con repositorios atados a una "transacción" en memoria.
func (s *Store) Run(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(
		&LocationRepo{s: s, inTx: true},
		&CatalogRepo{s: s, inTx: true},
		&MovementRepo{s: s, inTx: true},
		&OutboxRepo{s: s, inTx: true},
	)
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Locations devuelve el repositorio de registros fuera de transacción.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Catalog devuelve el repositorio de catálogo fuera de transacción.
func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

// Movements devuelve el libro de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Outbox devuelve la cola de sincronización fuera de transacción.
func (s *Store) Outbox() *OutboxRepo { return &OutboxRepo{s: s} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// References devuelve el repositorio de categorías y unidades.
func (s *Store) References() *ReferenceRepo { return &ReferenceRepo{s: s} }

// lock toma el mutex salvo que el llamador ya esté dentro de Run.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyLocation(r *entity.LocationRecord) *entity.LocationRecord {
	c := *r
	return &c
}

func copyCatalog(e *entity.CatalogEntry) *entity.CatalogEntry {
	c := *e
	return &c
}

func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	return &c
}

func copyOutbox(e *entity.OutboxEntry) *entity.OutboxEntry {
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	return &c
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}
