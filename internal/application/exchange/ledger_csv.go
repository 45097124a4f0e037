package exchange

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Página por defecto del libro cuando el cliente no indica límite.
const defaultLedgerPage = 100

// Ledger lista el libro de movimientos, más reciente primero.
func (uc *UseCase) Ledger(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLedgerPage
	}
	return uc.movements.List(ctx, filter)
}

// ExportLedger escribe en w el libro filtrado completo (sin paginación) como CSV.
func (uc *UseCase) ExportLedger(ctx context.Context, w io.Writer, filter repository.MovementFilter) error {
	filter.Limit, filter.Offset = 0, 0
	movements, err := uc.movements.List(ctx, filter)
	if err != nil {
		return err
	}
	known, err := uc.catalogMap(ctx)
	if err != nil {
		return err
	}
	return WriteLedgerCSV(w, movements, known)
}

var ledgerHeader = []string{"Data", "Operação", "SKU", "Produto", "Quantidade", "Responsável", "Origem"}

// WriteLedgerCSV exporta el libro de movimientos en el orden recibido.
// knownCodes permite marcar S/SKU los movimientos cuyo SKU ya no existe en el catálogo.
func WriteLedgerCSV(w io.Writer, movements []*entity.Movement, knownCodes map[string]*entity.CatalogEntry) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, m := range movements {
		op := "ENTRADA (+)"
		if m.Type == entity.MovementTypeExit {
			op = "SAÍDA (-)"
		}
		code := m.Code
		if _, ok := knownCodes[code]; !ok || code == "" {
			code = "S/SKU"
		}
		row := []string{
			m.Date.Format("02/01/2006"),
			op,
			code,
			m.ProductName,
			m.Quantity.StringFixed(1),
			m.Responsible,
			m.Origin,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
