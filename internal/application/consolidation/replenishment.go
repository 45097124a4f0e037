package consolidation

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// replenishmentHistoryDays ventana de salidas usada para priorizar la reposición.
const replenishmentHistoryDays = 90

// Suggestion sugerencia de reposición para un SKU en bajo stock.
type Suggestion struct {
	Code         string
	Name         string
	Category     string
	CurrentStock decimal.Decimal
	MinQuantity  decimal.Decimal
	IdealStock   decimal.Decimal // MinQuantity * 1.5
	SuggestedQty decimal.Decimal // IdealStock - CurrentStock
	ExitsLast90d decimal.Decimal
	Priority     int // 1 = más urgente
}

// Replenishment genera la lista de reposición de los SKUs en bajo stock, priorizada por
// volumen de salidas de los últimos 90 días y luego por déficit bajo el mínimo.
func (uc *UseCase) Replenishment(ctx context.Context, now time.Time) ([]Suggestion, error) {
	low, err := uc.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []Suggestion{}, nil
	}

	since := now.AddDate(0, 0, -replenishmentHistoryDays)
	movs, err := uc.movements.List(ctx, repository.MovementFilter{From: &since, To: &now, Type: entity.MovementTypeExit})
	if err != nil {
		return nil, err
	}
	exits := make(map[string]decimal.Decimal)
	for _, m := range movs {
		exits[m.Code] = exits[m.Code].Add(m.Quantity)
	}

	factor := decimal.NewFromFloat(1.5)
	out := make([]Suggestion, 0, len(low))
	for _, t := range low {
		ideal := t.MinQuantity.Mul(factor)
		suggested := ideal.Sub(t.Total)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		out = append(out, Suggestion{
			Code:         t.Code,
			Name:         t.Name,
			Category:     t.Category,
			CurrentStock: t.Total,
			MinQuantity:  t.MinQuantity,
			IdealStock:   ideal,
			SuggestedQty: suggested,
			ExitsLast90d: exits[t.Code],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ExitsLast90d.Equal(b.ExitsLast90d) {
			return a.ExitsLast90d.GreaterThan(b.ExitsLast90d)
		}
		// desempate: mayor déficit absoluto
		return a.MinQuantity.Sub(a.CurrentStock).GreaterThan(b.MinQuantity.Sub(b.CurrentStock))
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
