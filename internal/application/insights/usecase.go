package insights

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/application/ports"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// SourceFallback origen de las sugerencias cuando el modelo no responde.
const SourceFallback = "fallback"

// Fallback sugerencias fijas usadas si el proveedor falla o no está configurado.
var Fallback = []string{
	"Revise o nível de estoque mínimo para itens com alta frequência de saída.",
	"Considere organizar a Rua 8-A por ordem de SKU para agilizar a separação.",
	"Identifique produtos sem movimentação nos últimos 30 dias para otimização de espaço.",
}

const (
	llmTimeout  = 10 * time.Second
	recentMoves = 5
)

// TotalsSource fuente de totales consolidados.
type TotalsSource interface {
	Totals(ctx context.Context) ([]domaininv.SKUTotal, error)
}

// UseCase genera insights de stock con el LLM configurado.
type UseCase struct {
	llm       ports.LLMService // nil = siempre fallback
	totals    TotalsSource
	movements repository.MovementRepository
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(llm ports.LLMService, totals TotalsSource, movements repository.MovementRepository, log zerolog.Logger) *UseCase {
	return &UseCase{llm: llm, totals: totals, movements: movements, log: log}
}

// Insights devuelve hasta 3 textos y su origen. Solo falla si no se pueden leer los datos locales.
func (uc *UseCase) Insights(ctx context.Context) ([]string, string, error) {
	totals, err := uc.totals.Totals(ctx)
	if err != nil {
		return nil, "", err
	}
	recent, err := uc.movements.List(ctx, repository.MovementFilter{Limit: recentMoves})
	if err != nil {
		return nil, "", err
	}
	if uc.llm == nil {
		return fallback(), SourceFallback, nil
	}

	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	out, err := uc.llm.StockInsights(ctx, digest(totals, recent))
	if err != nil || len(out) == 0 {
		uc.log.Warn().Err(err).Str("provider", uc.llm.Name()).Msg("insights IA no disponibles; se usan los de respaldo")
		return fallback(), SourceFallback, nil
	}
	return out, uc.llm.Name(), nil
}

func fallback() []string {
	return append([]string(nil), Fallback...)
}

func digest(totals []domaininv.SKUTotal, recent []*entity.Movement) ports.StockDigest {
	d := ports.StockDigest{
		Items:  make([]ports.StockItem, 0, len(totals)),
		Recent: make([]ports.RecentMove, 0, len(recent)),
	}
	for _, t := range totals {
		d.Items = append(d.Items, ports.StockItem{Name: t.Name, Qty: t.Total, Min: t.MinQuantity})
	}
	for _, m := range recent {
		d.Recent = append(d.Recent, ports.RecentMove{
			Product:     m.ProductName,
			Type:        m.Type,
			Quantity:    m.Quantity,
			Origin:      m.Origin,
			Responsible: m.Responsible,
			Date:        m.Date.Format(time.RFC3339),
		})
	}
	return d
}
