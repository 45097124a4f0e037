package replication

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// AdminSeeder crea o completa el administrador configurado.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, name, password string) (bool, error)
}

// Bootstrapper carga el estado inicial de cada colección vacía localmente.
type Bootstrapper struct {
	remote        Remote
	tx            inventory.TxRunner
	locations     repository.LocationRepository
	movements     repository.MovementRepository
	users         repository.UserRepository
	refs          repository.ReferenceRepository
	outbox        repository.OutboxRepository
	admin         AdminSeeder
	adminName     string
	adminPassword string
	log           zerolog.Logger

	codes dto.ProductCodes // id → código de las filas remotas de products
}

// BootstrapDeps dependencias del arranque.
type BootstrapDeps struct {
	Remote        Remote // nil = sin remoto
	Tx            inventory.TxRunner
	Locations     repository.LocationRepository
	Movements     repository.MovementRepository
	Users         repository.UserRepository
	Refs          repository.ReferenceRepository
	Outbox        repository.OutboxRepository
	Admin         AdminSeeder
	AdminName     string
	AdminPassword string
}

// NewBootstrapper construye el cargador inicial.
func NewBootstrapper(d BootstrapDeps, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		remote:        d.Remote,
		tx:            d.Tx,
		locations:     d.Locations,
		movements:     d.Movements,
		users:         d.Users,
		refs:          d.Refs,
		outbox:        d.Outbox,
		admin:         d.Admin,
		adminName:     d.AdminName,
		adminPassword: d.AdminPassword,
		log:           log,
	}
}

// BootstrapResult filas traídas o sembradas por colección.
type BootstrapResult map[string]int

// Run revisa las cinco colecciones. Un remoto vacío o inaccesible nunca es un error:
// se usan los valores por defecto y se encolan para subirlos.
func (b *Bootstrapper) Run(ctx context.Context) (BootstrapResult, error) {
	res := BootstrapResult{}
	steps := []struct {
		collection string
		fn         func(context.Context) (int, error)
	}{
		{entity.CollectionProducts, b.products},
		{entity.CollectionTransactions, b.transactions},
		{entity.CollectionUsers, b.usersStep},
		{entity.CollectionCategories, func(ctx context.Context) (int, error) {
			return b.references(ctx, entity.ReferenceCategory, entity.CollectionCategories, entity.DefaultCategories)
		}},
		{entity.CollectionUnits, func(ctx context.Context) (int, error) {
			return b.references(ctx, entity.ReferenceUnit, entity.CollectionUnits, entity.DefaultUnits)
		}},
	}
	for _, s := range steps {
		n, err := s.fn(ctx)
		if err != nil {
			return res, err
		}
		res[s.collection] = n
	}
	if b.admin != nil {
		seeded, err := b.admin.EnsureAdmin(ctx, b.adminName, b.adminPassword)
		if err != nil {
			return res, err
		}
		if seeded {
			b.log.Info().Str("name", b.adminName).Msg("administrador inicial preparado")
		}
	}
	return res, nil
}

// fetch trae una colección; los errores del remoto se registran y se tratan como colección vacía.
func (b *Bootstrapper) fetch(ctx context.Context, collection string) []json.RawMessage {
	if b.remote == nil {
		return nil
	}
	rows, err := b.remote.Fetch(ctx, collection)
	if err != nil {
		b.log.Warn().Err(err).Str("collection", collection).Msg("remoto inaccesible; se usan valores locales por defecto")
		return nil
	}
	return rows
}

// products trae los registros remotos. Las filas repetidas por (código, dirección) se suman en
// la primera y las sobrantes se borran en remoto; los saldos cero fuera de PENDING no se guardan.
func (b *Bootstrapper) products(ctx context.Context) (int, error) {
	local, err := b.locations.List(ctx, repository.LocationFilter{})
	if err != nil || len(local) > 0 {
		return 0, err
	}
	rows := b.fetch(ctx, entity.CollectionProducts)
	if len(rows) == 0 {
		return 0, nil
	}

	var docs []dto.ProductDoc
	for _, raw := range rows {
		var doc dto.ProductDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			b.log.Warn().Err(err).Msg("producto remoto ilegible")
			continue
		}
		docs = append(docs, doc)
	}
	b.codes = dto.NewProductCodes(docs)

	n := 0
	err = b.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		_ repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		n = 0
		now := time.Now().UTC()
		entries := make(map[string]*entity.CatalogEntry)
		byKey := make(map[string]*entity.LocationRecord)
		merged := make(map[string]bool)
		var order []*entity.LocationRecord
		var stale []string
		for _, doc := range docs {
			rec := doc.Record()
			if rec.ID == "" || rec.Code == "" || rec.Quantity.IsNegative() {
				continue
			}
			if _, ok := entries[rec.Code]; !ok {
				entry, err := catalog.Get(ctx, rec.Code)
				if err != nil {
					return err
				}
				if entry == nil {
					entry = doc.Entry()
					if entry.CreatedAt.IsZero() {
						entry.CreatedAt, entry.UpdatedAt = now, now
					}
					if entry.MinQuantity.IsZero() {
						entry.MinQuantity = entity.DefaultMinQuantity
					}
					if err := catalog.Create(ctx, entry); err != nil {
						return err
					}
				}
				entries[rec.Code] = entry
			}

			key := rec.Code + "|" + rec.Address.Key()
			if prev, ok := byKey[key]; ok {
				prev.Quantity = prev.Quantity.Add(rec.Quantity)
				merged[prev.ID] = true
				stale = append(stale, rec.ID)
				continue
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt, rec.UpdatedAt = now, now
			}
			byKey[key] = rec
			order = append(order, rec)
		}

		for _, rec := range order {
			if rec.ShouldPrune() {
				stale = append(stale, rec.ID)
				continue
			}
			if merged[rec.ID] {
				rec.Touch(now)
			}
			if err := locations.Create(ctx, rec); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					b.log.Warn().Str("id", rec.ID).Msg("id de producto remoto repetido")
					continue
				}
				return err
			}
			if merged[rec.ID] {
				if err := inventory.EnqueueRecordUpsert(ctx, outbox, rec, entries[rec.Code]); err != nil {
					return err
				}
			}
			n++
		}
		for _, id := range stale {
			if err := inventory.EnqueueRecordDelete(ctx, outbox, id); err != nil {
				return err
			}
		}
		if len(stale) > 0 {
			b.log.Info().Int("rows", len(stale)).Msg("filas remotas repetidas o en cero se unifican")
		}
		return nil
	})
	return n, err
}

func (b *Bootstrapper) transactions(ctx context.Context) (int, error) {
	local, err := b.movements.List(ctx, repository.MovementFilter{Limit: 1})
	if err != nil || len(local) > 0 {
		return 0, err
	}
	rows := b.fetch(ctx, entity.CollectionTransactions)
	n := 0
	for _, raw := range rows {
		var doc dto.TransactionDoc
		if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
			continue
		}
		m := doc.Movement()
		if !b.codes.Fill(m) {
			b.fillCodeFromLocal(ctx, m)
		}
		if err := b.movements.Create(ctx, m); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// fillCodeFromLocal resuelve el código de un movimiento antiguo contra los registros locales.
func (b *Bootstrapper) fillCodeFromLocal(ctx context.Context, m *entity.Movement) {
	if m.ProductID == "" {
		return
	}
	rec, err := b.locations.GetByID(ctx, m.ProductID)
	if err != nil {
		b.log.Warn().Err(err).Str("product_id", m.ProductID).Msg("resolver código de movimiento")
		return
	}
	if rec != nil {
		m.Code = rec.Code
	}
}

// usersStep trae usuarios remotos sin contraseña; el administrador configurado se completa después.
func (b *Bootstrapper) usersStep(ctx context.Context) (int, error) {
	local, err := b.users.List(ctx)
	if err != nil || len(local) > 0 {
		return 0, err
	}
	n := 0
	now := time.Now().UTC()
	for _, raw := range b.fetch(ctx, entity.CollectionUsers) {
		var doc dto.UserDoc
		if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" || doc.Name == "" {
			continue
		}
		role := doc.Role
		if role != entity.RoleAdmin {
			role = entity.RoleOperator
		}
		u := &entity.User{ID: doc.ID, Name: doc.Name, Role: role, Preferences: doc.Preferences, CreatedAt: now, UpdatedAt: now}
		if err := b.users.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (b *Bootstrapper) references(ctx context.Context, kind, collection string, defaults []string) (int, error) {
	local, err := b.refs.List(ctx, kind)
	if err != nil || len(local) > 0 {
		return 0, err
	}
	var names []string
	for _, raw := range b.fetch(ctx, collection) {
		var doc dto.ReferenceDoc
		if err := json.Unmarshal(raw, &doc); err == nil && doc.Name != "" {
			names = append(names, doc.Name)
		}
	}
	seeded := false
	if len(names) == 0 {
		names, seeded = defaults, true
	}
	n := 0
	for _, name := range names {
		if err := b.refs.Add(ctx, kind, name); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return n, err
		}
		if seeded {
			if err := inventory.EnqueueReference(ctx, b.outbox, collection, entity.OutboxOpUpsert, name); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}
