// Package pdf draws document models as A4 PDF files.
package pdf

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/render"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const gridColumns = 12

var (
	brand     = &props.Color{Red: 27, Green: 94, Blue: 32}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
	muted     = &props.Color{Red: 100, Green: 100, Blue: 100}
	panelBg   = &props.Color{Red: 241, Green: 248, Blue: 233}
	stripeBg  = &props.Color{Red: 248, Green: 249, Blue: 250}
	pageColor = &props.Color{Red: 120, Green: 120, Blue: 120}
)

// Renderer implements render.Renderer with maroto.
type Renderer struct {
	PageNumberPattern string
}

func New() *Renderer {
	return &Renderer{PageNumberPattern: "Página {current} de {total}"}
}

func (r *Renderer) ContentType() string { return "application/pdf" }

func (r *Renderer) Extension() string { return ".pdf" }

func (r *Renderer) Render(model document.Model) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: r.PageNumberPattern,
			Place:   props.RightBottom,
			Size:    7,
			Color:   pageColor,
		}).
		Build()

	m := maroto.New(cfg)
	for _, b := range model.Blocks {
		switch block := b.(type) {
		case document.HeaderBlock:
			addHeader(m, block)
		case document.KeyValueBlock:
			addKeyValue(m, block)
		case document.TableBlock:
			addTable(m, block)
		case document.TotalsBlock:
			addTotals(m, block)
		case document.TextListBlock:
			addTextList(m, block)
		case document.SignatureBlock:
			addSignatures(m, block)
		default:
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("pdf: unsupported block %q", b.Kind()))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to generate quotation pdf")
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, h document.HeaderBlock) {
	var badge core.Col
	switch b := h.Badge.(type) {
	case document.ImageBadge:
		if ext, ok := imageExtension(b.Image.Format); ok {
			badge = col.New(5).Add(image.NewFromBytes(b.Image.Data, ext, props.Rect{Center: true, Percent: 90}))
		}
	case document.TextBadge:
		badge = col.New(5).Add(
			text.New(b.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Color: white, Top: 2}),
			text.New(b.Number, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center, Color: white, Top: 11}),
			text.New(b.Date, props.Text{Size: 9, Align: align.Center, Color: white, Top: 17}),
		).WithStyle(&props.Cell{BackgroundColor: brand})
	}
	if badge == nil {
		badge = col.New(5)
	}

	company := col.New(7)
	top := 0.0
	for _, line := range h.Company {
		style := props.Text{Size: 8, Align: align.Left, Color: muted, Top: top}
		if line.Emphasis {
			style = props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Left, Color: brand, Top: top}
			top += 6
		} else {
			top += 4
		}
		company.Add(text.New(line.Text, style))
	}

	m.AddRows(row.New(30).Add(company, badge))
	m.AddRows(row.New(4))
}

func addKeyValue(m core.Maroto, kv document.KeyValueBlock) {
	weights := kv.Weights
	if len(weights) != len(kv.Groups) {
		weights = make([]float64, len(kv.Groups))
		for i := range weights {
			weights[i] = 1
		}
	}
	sizes := render.GridSizes(weights, gridColumns)

	depth := 0
	for _, g := range kv.Groups {
		depth = max(depth, len(g))
	}
	labelStyle := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: brand, Left: 2}
	valueStyle := props.Text{Size: 8, Align: align.Left}
	cell := &props.Cell{BackgroundColor: panelBg}

	for i := 0; i < depth; i++ {
		cols := make([]core.Col, 0, len(kv.Groups)*2)
		for g, group := range kv.Groups {
			labelSize := max(1, sizes[g]*2/5)
			valueSize := sizes[g] - labelSize
			label, value := "", ""
			if i < len(group) {
				label, value = group[i].Label, group[i].Value
			}
			if valueSize == 0 {
				cols = append(cols, col.New(labelSize).Add(text.New(strings.TrimSpace(label+" "+value), valueStyle)).WithStyle(cell))
				continue
			}
			cols = append(cols,
				col.New(labelSize).Add(text.New(label, labelStyle)).WithStyle(cell),
				col.New(valueSize).Add(text.New(value, valueStyle)).WithStyle(cell),
			)
		}
		m.AddRows(row.New(6).Add(cols...))
	}
	m.AddRows(row.New(4))
}

func addTable(m core.Maroto, t document.TableBlock) {
	weights := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		weights[i] = c.Weight
	}
	sizes := render.GridSizes(weights, gridColumns)

	headerCell := &props.Cell{BackgroundColor: brand}
	header := make([]core.Col, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = col.New(sizes[i]).Add(text.New(c.Header, props.Text{
			Size: 8, Style: fontstyle.Bold, Align: mapAlign(c.Align), Color: white, Top: 1.5,
		})).WithStyle(headerCell)
	}
	m.AddRows(row.New(8).Add(header...))

	for r, values := range t.Rows {
		var cellStyle *props.Cell
		if r%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: stripeBg}
		}
		cols := make([]core.Col, len(t.Columns))
		for i, c := range t.Columns {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			cc := col.New(sizes[i]).Add(text.New(v, props.Text{Size: 8, Align: mapAlign(c.Align), Top: 1.5, Left: 1, Right: 1}))
			if cellStyle != nil {
				cc = cc.WithStyle(cellStyle)
			}
			cols[i] = cc
		}
		m.AddRows(row.New(7).Add(cols...))
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, t document.TotalsBlock) {
	for _, r := range t.Rows {
		labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 1}
		valueStyle := props.Text{Size: 9, Align: align.Right, Top: 1, Right: 1}
		height := 7.0
		var cell *props.Cell
		if r.Emphasis {
			labelStyle.Size, valueStyle.Size = 11, 11
			labelStyle.Color, valueStyle.Color = white, white
			valueStyle.Style = fontstyle.Bold
			cell = &props.Cell{BackgroundColor: brand}
			height = 9
		}
		label := col.New(2).Add(text.New(r.Label, labelStyle))
		value := col.New(3).Add(text.New(r.Value, valueStyle))
		if cell != nil {
			label = label.WithStyle(cell)
			value = value.WithStyle(cell)
		}
		m.AddRows(row.New(height).Add(col.New(7), label, value))
	}
	m.AddRows(row.New(6))
}

func addTextList(m core.Maroto, l document.TextListBlock) {
	if l.Title != "" {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New(l.Title, props.Text{
			Size: 9, Style: fontstyle.Bold, Align: align.Left, Color: brand,
		}))))
	}
	for _, item := range l.Items {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("• "+item, props.Text{
			Size: 8, Align: align.Left, Left: 3,
		}))))
	}
	m.AddRows(row.New(4))
}

func addSignatures(m core.Maroto, s document.SignatureBlock) {
	if len(s.Parties) == 0 {
		return
	}
	m.AddRows(row.New(14))
	weights := make([]float64, len(s.Parties))
	for i := range weights {
		weights[i] = 1
	}
	sizes := render.GridSizes(weights, gridColumns)
	lineStyle := props.Text{Size: 8, Align: align.Center, Color: muted}
	labelStyle := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: muted}

	lines := make([]core.Col, len(s.Parties))
	labels := make([]core.Col, len(s.Parties))
	for i, p := range s.Parties {
		lines[i] = col.New(sizes[i]).Add(text.New("____________________________", lineStyle))
		labels[i] = col.New(sizes[i]).Add(text.New(p, labelStyle))
	}
	m.AddRows(row.New(6).Add(lines...))
	m.AddRows(row.New(7).Add(labels...))
}

func mapAlign(a document.Align) align.Type {
	switch a {
	case document.AlignCenter:
		return align.Center
	case document.AlignRight:
		return align.Right
	default:
		return align.Left
	}
}

func imageExtension(format string) (extension.Type, bool) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return extension.Png, true
	case "jpg":
		return extension.Jpg, true
	case "jpeg":
		return extension.Jpeg, true
	default:
		return "", false
	}
}
