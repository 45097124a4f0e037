package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/ports"
	domaininv "github.com/jhoicas/bodega-ledger/internal/domain/inventory"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
)

type staticTotals []domaininv.SKUTotal

func (s staticTotals) Totals(context.Context) ([]domaininv.SKUTotal, error) { return s, nil }

type fakeLLM struct {
	out  []string
	err  error
	seen ports.StockDigest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) StockInsights(ctx context.Context, d ports.StockDigest) ([]string, error) {
	f.seen = d
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sin deadline")
	}
	return f.out, f.err
}

var totals = staticTotals{{Code: "1", Name: "Feltro", Total: decimal.NewFromInt(10), MinQuantity: decimal.NewFromInt(98)}}

func TestInsights_DelModelo(t *testing.T) {
	llm := &fakeLLM{out: []string{"a", "b", "c"}}
	uc := NewUseCase(llm, totals, memory.NewStore().Movements(), zerolog.Nop())

	got, src, err := uc.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, "fake", src)
	require.Len(t, llm.seen.Items, 1)
	assert.Equal(t, "Feltro", llm.seen.Items[0].Name)
}

func TestInsights_FallbackAnteError(t *testing.T) {
	uc := NewUseCase(&fakeLLM{err: errors.New("timeout")}, totals, memory.NewStore().Movements(), zerolog.Nop())
	got, src, err := uc.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, src)
	assert.Len(t, got, 3)
}

func TestInsights_SinProveedor(t *testing.T) {
	uc := NewUseCase(nil, totals, memory.NewStore().Movements(), zerolog.Nop())
	got, src, err := uc.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, src)
	assert.Equal(t, Fallback, got)
}
