package exchange

import (
	"context"

	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// Label etiqueta de un bin: registro, descripción y el texto del QR.
type Label struct {
	Record  *entity.LocationRecord
	Entry   *entity.CatalogEntry
	Payload string
}

// Label arma la etiqueta de un registro.
func (uc *UseCase) Label(ctx context.Context, recordID string) (*Label, error) {
	rec, err := uc.locations.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	entry, err := uc.catalog.Get(ctx, rec.Code)
	if err != nil {
		return nil, err
	}
	return &Label{Record: rec, Entry: entry, Payload: domaininv.LabelPayload(rec, entry)}, nil
}

// Labels arma las etiquetas de todos los registros ubicados (sin el placeholder), filtradas opcionalmente.
func (uc *UseCase) Labels(ctx context.Context, filter repository.LocationFilter) ([]Label, error) {
	recs, err := uc.locations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	entries, err := uc.catalogMap(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Label, 0, len(recs))
	for _, r := range recs {
		if r.IsPlaceholder() {
			continue
		}
		e := entries[r.Code]
		out = append(out, Label{Record: r, Entry: e, Payload: domaininv.LabelPayload(r, e)})
	}
	return out, nil
}
