// Package pdf genera las hojas imprimibles del almacén con Maroto v2.
//
// Hoja de etiquetas (A4, dos por fila):
//
//	┌──────────────────────────────┬──────────────────────────────┐
//	│ QR │ SKU / ITEM / END        │ QR │ SKU / ITEM / END        │
//	└──────────────────────────────┴──────────────────────────────┘
//
// Hoja de paquete: un único QR grande con el paquete de sincronización.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const brand = "LOGIMAP 360"

// MarotoPDFGenerator genera etiquetas y la hoja del paquete escaneable.
type MarotoPDFGenerator struct {
	now func() time.Time
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{now: time.Now}
}

func newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(brand, true).
		Build()
	return maroto.New(cfg)
}

// LabelSheet una etiqueta con QR por registro, dos por fila.
func (g *MarotoPDFGenerator) LabelSheet(_ context.Context, labels []exchange.Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("pdf: no hay etiquetas para imprimir")
	}
	m := newDocument("Etiquetas de endereçamento")
	m.AddRows(titleRow("ETIQUETAS DE ENDEREÇAMENTO", g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for i := 0; i < len(labels); i += 2 {
		cols := []core.Col{labelCol(labels[i])}
		if i+1 < len(labels) {
			cols = append(cols, labelCol(labels[i+1]))
		} else {
			cols = append(cols, col.New(6))
		}
		m.AddRows(row.New(42).Add(cols...))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiquetas: %w", err)
	}
	return doc.GetBytes(), nil
}

// BundleSheet hoja con el QR del paquete de sincronización para otro terminal.
func (g *MarotoPDFGenerator) BundleSheet(_ context.Context, bundle string) ([]byte, error) {
	if bundle == "" {
		return nil, fmt.Errorf("pdf: paquete vacío")
	}
	m := newDocument("Pacote de sincronização")
	m.AddRows(titleRow("PACOTE DE SINCRONIZAÇÃO", g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(150).Add(
		col.New(12).Add(code.NewQr(bundle, props.Rect{Percent: 95, Center: true})),
	))
	m.AddRows(row.New(12).Add(col.New(12).Add(
		text.New("Aponte a câmera do dispositivo móvel para importar os dados deste terminal.", props.Text{
			Size: 8, Align: align.Center, Color: colorGray, Top: 3,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar paquete: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func titleRow(title string, at time.Time) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New(brand, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(title, props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Gerado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// labelCol columna de media página: QR a la izquierda, datos a la derecha.
func labelCol(l exchange.Label) core.Col {
	name := ""
	if l.Entry != nil {
		name = l.Entry.Name
	}
	return col.New(6).Add(
		code.NewQr(l.Payload, props.Rect{Percent: 85, Left: 1, Top: 2}),
		text.New("SKU: "+l.Record.Code, props.Text{Style: fontstyle.Bold, Size: 9, Left: 40, Top: 4}),
		text.New(truncate(name, 40), props.Text{Size: 8, Left: 40, Top: 12}),
		text.New(l.Record.Address.Short(), props.Text{
			Style: fontstyle.Bold, Size: 11, Left: 40, Top: 22, Color: colorPrimary,
		}),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
