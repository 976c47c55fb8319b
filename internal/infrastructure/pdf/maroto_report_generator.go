// Package pdf genera el relatorio de patrimonios en PDF (Maroto v2).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + alcance         │  Fecha de emisión        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FILTRO: búsqueda aplicada                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Tombo | Descrição | Setor | Dependência | Situação | Valor │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: cantidad por situación / valor total               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-patrimonio/internal/application/ports"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
)

var _ ports.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator genera relatorios con Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateAssetReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateAssetReport(_ context.Context, report ports.AssetReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if q := strings.TrimSpace(report.Query); q != "" {
		m.AddRows(row.New(7).Add(col.New(12).Add(
			text.New("Filtro: "+q, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}

	m.AddRows(tableHeaderRow())
	if len(report.Assets) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Nenhum patrimônio encontrado.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(tableDetailRows(report.Assets)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report.Assets))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report ports.AssetReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(report.Scope, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Emitido em", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tombo", 1, align.Left),
		h("Descrição", 4, align.Left),
		h("Setor", 2, align.Left),
		h("Dependência", 2, align.Left),
		h("Situação", 1, align.Center),
		h("Valor", 2, align.Right),
	)
}

func tableDetailRows(assets []*entity.Asset) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(assets))
	for _, a := range assets {
		result = append(result, row.New(7).Add(
			cell(fmt.Sprintf("%d", a.TagNumber), 1, align.Left),
			cell(nonEmpty(a.Description, "—"), 4, align.Left),
			cell(nonEmpty(a.Sector, "—"), 2, align.Left),
			cell(nonEmpty(a.Dependency, "—"), 2, align.Left),
			cell(a.Status.Label(), 1, align.Center),
			cell(formatValue(a.Value), 2, align.Right),
		))
	}
	return result
}

func totalsRow(assets []*entity.Asset) core.Row {
	total := decimal.Zero
	byStatus := make(map[entity.AssetStatus]int, len(entity.AssetStatuses))
	for _, a := range assets {
		if a.Value.Valid {
			total = total.Add(a.Value.Decimal)
		}
		byStatus[a.Status]++
	}
	var parts []string
	for _, s := range entity.AssetStatuses {
		parts = append(parts, fmt.Sprintf("%s: %d", s.Label(), byStatus[s]))
	}

	return row.New(14).Add(
		col.New(8).Add(
			text.New(fmt.Sprintf("Total de patrimônios: %d", len(assets)), props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
			text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Valor total: R$ "+formatMoney(total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return "—"
	}
	return "R$ " + formatMoney(v.Decimal)
}

// formatMoney formato brasileño con 2 decimales.
// Ej: 1234.5 → "1.234,50", -25000 → "-25.000,00"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}
