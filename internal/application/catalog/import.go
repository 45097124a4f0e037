package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Tipos de archivo de importación.
const (
	ImportInventory = "inventory" // SKU;EAN;Nome;Categoria;Quantidade;Minimo;Rua;Bloco;Nivel;Posicao
	ImportCatalog   = "catalog"   // SKU;EAN;Nome;Categoria;Unidade
)

// Cantidad mínima de campos por tipo de fila.
const (
	InventoryFields = 10
	CatalogFields   = 5
)

// defaultImportUnit unidad asignada a SKUs que llegan por importación de inventario.
const defaultImportUnit = "un"

// ImportResult conteo agregado; las filas descartadas no tienen diagnóstico individual.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ValidImportKind indica si kind es un tipo de importación soportado.
func ValidImportKind(kind string) bool {
	return kind == ImportInventory || kind == ImportCatalog
}

// BatchImport aplica las filas en una sola transacción.
// Inventario: el saldo del archivo reemplaza el saldo del registro (code, dirección), por lo que
// reimportar el mismo archivo no duplica registros ni totales. No genera movimientos.
// Catálogo: alta o actualización de la entrada; crea el placeholder solo si el código no tiene registros.
func (uc *UseCase) BatchImport(ctx context.Context, kind string, rows [][]string) (ImportResult, error) {
	if !ValidImportKind(kind) {
		return ImportResult{}, domain.ErrInvalidInput
	}
	now := uc.now()
	var res ImportResult
	err := uc.tx.Run(ctx, func(
		locations repository.LocationRepository,
		catalog repository.CatalogRepository,
		_ repository.MovementRepository,
		outbox repository.OutboxRepository,
	) error {
		res = ImportResult{}
		for _, row := range rows {
			var ok bool
			var err error
			if kind == ImportInventory {
				ok, err = importInventoryRow(ctx, locations, catalog, outbox, row, now)
			} else {
				ok, err = importCatalogRow(ctx, locations, catalog, outbox, row, now)
			}
			if err != nil {
				return err
			}
			if ok {
				res.Imported++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	uc.log.Info().Str("kind", kind).Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("importación aplicada")
	uc.invalidate(ctx)
	return res, nil
}

func cell(row []string, i int) string {
	return strings.TrimSpace(row[i])
}

// parseQuantity acepta coma o punto decimal; vacío o inválido vale cero.
func parseQuantity(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func importInventoryRow(ctx context.Context, locations repository.LocationRepository, catalog repository.CatalogRepository, outbox repository.OutboxRepository, row []string, now time.Time) (bool, error) {
	if len(row) < InventoryFields {
		return false, nil
	}
	code := entity.NormalizeCode(cell(row, 0))
	if code == "" {
		return false, nil
	}
	quantity := parseQuantity(cell(row, 4))
	if quantity.IsNegative() || !entity.ValidQuantity(quantity) {
		return false, nil
	}
	minQty := parseQuantity(cell(row, 5))
	if !minQty.IsPositive() || !entity.ValidQuantity(minQty) {
		minQty = entity.DefaultMinQuantity
	}
	addr := entity.Address{Street: cell(row, 6), Block: cell(row, 7), Level: cell(row, 8), Position: cell(row, 9)}.Normalize()
	if !addr.IsComplete() {
		addr = entity.PendingAddress()
	}

	entry, err := upsertEntry(ctx, catalog, &entity.CatalogEntry{
		Code:        code,
		EAN:         cell(row, 1),
		Name:        cell(row, 2),
		Category:    strings.ToUpper(cell(row, 3)),
		Unit:        defaultImportUnit,
		MinQuantity: minQty,
	}, true, now)
	if err != nil {
		return false, err
	}

	rec, err := locations.FindByCodeAndAddress(ctx, code, addr)
	if err != nil {
		return false, err
	}
	switch {
	case rec == nil && quantity.IsZero() && !addr.IsPending():
		// saldo cero en dirección real: nada que registrar
	case rec == nil:
		rec = &entity.LocationRecord{
			ID:        uuid.New().String(),
			Code:      code,
			Quantity:  quantity,
			Address:   addr,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := locations.Create(ctx, rec); err != nil {
			return false, err
		}
		if err := inventory.EnqueueRecordUpsert(ctx, outbox, rec, entry); err != nil {
			return false, err
		}
	case !rec.Quantity.Equal(quantity):
		rec.Quantity = quantity
		rec.Touch(now)
		if _, err := persistSet(ctx, locations, outbox, rec, entry); err != nil {
			return false, err
		}
	}

	if !addr.IsPending() && quantity.IsPositive() {
		if _, err := inventory.ConsumePlaceholder(ctx, locations, outbox, code); err != nil {
			return false, err
		}
	} else if _, err := ensurePlaceholder(ctx, locations, outbox, entry, now); err != nil {
		return false, err
	}
	return true, nil
}

// persistSet guarda un saldo fijado por importación; en cero elimina el registro salvo el placeholder.
func persistSet(ctx context.Context, locations repository.LocationRepository, outbox repository.OutboxRepository, rec *entity.LocationRecord, entry *entity.CatalogEntry) (*entity.LocationRecord, error) {
	if rec.ShouldPrune() {
		if err := locations.Delete(ctx, rec.ID); err != nil {
			return nil, err
		}
		return nil, inventory.EnqueueRecordDelete(ctx, outbox, rec.ID)
	}
	if err := locations.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, inventory.EnqueueRecordUpsert(ctx, outbox, rec, entry)
}

func importCatalogRow(ctx context.Context, locations repository.LocationRepository, catalog repository.CatalogRepository, outbox repository.OutboxRepository, row []string, now time.Time) (bool, error) {
	if len(row) < CatalogFields {
		return false, nil
	}
	code := entity.NormalizeCode(cell(row, 0))
	if code == "" {
		return false, nil
	}
	entry, err := upsertEntry(ctx, catalog, &entity.CatalogEntry{
		Code:     code,
		EAN:      cell(row, 1),
		Name:     cell(row, 2),
		Category: strings.ToUpper(cell(row, 3)),
		Unit:     cell(row, 4),
	}, false, now)
	if err != nil {
		return false, err
	}
	if _, err := ensurePlaceholder(ctx, locations, outbox, entry, now); err != nil {
		return false, err
	}
	return true, nil
}

// upsertEntry crea la entrada o actualiza los campos informados por la fila.
// withMin indica si la fila trae mínimo propio (solo la importación de inventario).
func upsertEntry(ctx context.Context, catalog repository.CatalogRepository, row *entity.CatalogEntry, withMin bool, now time.Time) (*entity.CatalogEntry, error) {
	existing, err := catalog.Get(ctx, row.Code)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if row.Name == "" {
			row.Name = row.Code
		}
		if row.MinQuantity.IsZero() {
			row.MinQuantity = entity.DefaultMinQuantity
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		if err := catalog.Create(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	}

	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&existing.Name, row.Name)
	set(&existing.EAN, row.EAN)
	set(&existing.Category, row.Category)
	if !withMin {
		set(&existing.Unit, row.Unit)
	}
	if withMin && !existing.MinQuantity.Equal(row.MinQuantity) {
		existing.MinQuantity = row.MinQuantity
		changed = true
	}
	if changed {
		existing.UpdatedAt = now
		if err := catalog.Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	return existing, nil
}
