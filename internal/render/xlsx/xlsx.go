// Package xlsx writes document models as single-sheet Excel workbooks.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/quotecatalog/internal/document"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const (
	defaultColumns = 5
	maxSheetName   = 31
	brandColor     = "#1B5E20"
	panelColor     = "#F1F8E9"
)

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (r *Renderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *Renderer) Extension() string { return ".xlsx" }

type styles struct {
	title, companyName, muted, badge, label, value, header, cell, total, emphasis int
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	cols  int
	row   int
	st    styles
}

func (r *Renderer) Render(m document.Model) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(m.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, wrap(err, "set sheet name")
	}

	w := &sheetWriter{f: f, sheet: sheet, cols: columnCount(m), row: 1}
	if err := w.prepare(m); err != nil {
		return nil, err
	}

	for _, b := range m.Blocks {
		var err error
		switch block := b.(type) {
		case document.HeaderBlock:
			err = w.header(block)
		case document.KeyValueBlock:
			err = w.keyValue(block)
		case document.TableBlock:
			err = w.table(block)
		case document.TotalsBlock:
			err = w.totals(block)
		case document.TextListBlock:
			err = w.textList(block)
		case document.SignatureBlock:
			err = w.signatures(block)
		default:
			err = fmt.Errorf("unsupported block %q", b.Kind())
		}
		if err != nil {
			return nil, wrap(err, "write "+string(b.Kind())+" block")
		}
		w.row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

// SheetName strips characters Excel rejects and trims to 31 runes.
func SheetName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	runes := []rune(cleaned)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	if len(runes) == 0 {
		return "Cotizacion"
	}
	return strings.TrimSpace(string(runes))
}

// Sanitize keeps spreadsheet programs from evaluating text as a formula.
func Sanitize(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@':
		return "'" + v
	}
	return v
}

func columnCount(m document.Model) int {
	if b, ok := m.Find(document.KindTable); ok {
		if n := len(b.(document.TableBlock).Columns); n > 1 {
			return n
		}
	}
	return defaultColumns
}

func (w *sheetWriter) prepare(m document.Model) error {
	widths := make([]float64, w.cols)
	for i := range widths {
		widths[i] = 16
	}
	if b, ok := m.Find(document.KindTable); ok {
		for i, c := range b.(document.TableBlock).Columns {
			if i < len(widths) && c.Weight > 0 {
				widths[i] = c.Weight * 12
			}
		}
	}
	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return wrap(err, "column name")
		}
		if err := w.f.SetColWidth(w.sheet, name, name, width); err != nil {
			return wrap(err, "set col width")
		}
	}

	thin := []excelize.Border{
		{Type: "left", Color: "#BDBDBD", Style: 1},
		{Type: "right", Color: "#BDBDBD", Style: 1},
		{Type: "top", Color: "#BDBDBD", Style: 1},
		{Type: "bottom", Color: "#BDBDBD", Style: 1},
	}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: brandColor}}},
		{&w.st.companyName, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 13, Color: brandColor}}},
		{&w.st.muted, &excelize.Style{Font: &excelize.Font{Size: 9, Color: "#646464"}}},
		{&w.st.badge, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{brandColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&w.st.label, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 9, Color: brandColor},
			Fill: excelize.Fill{Type: "pattern", Color: []string{panelColor}, Pattern: 1},
		}},
		{&w.st.value, &excelize.Style{
			Font: &excelize.Font{Size: 10},
			Fill: excelize.Fill{Type: "pattern", Color: []string{panelColor}, Pattern: 1},
		}},
		{&w.st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{brandColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thin,
		}},
		{&w.st.cell, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thin}},
		{&w.st.total, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&w.st.emphasis, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{brandColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
	}
	for _, d := range defs {
		id, err := w.f.NewStyle(d.style)
		if err != nil {
			return wrap(err, "create style")
		}
		*d.dst = id
	}
	return nil
}

func (w *sheetWriter) cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// put writes v into the span [from, to] of the current row and styles it.
func (w *sheetWriter) put(from, to int, v string, style int) error {
	start, end := w.cell(from, w.row), w.cell(to, w.row)
	if to > from {
		if err := w.f.MergeCell(w.sheet, start, end); err != nil {
			return err
		}
	}
	if err := w.f.SetCellValue(w.sheet, start, Sanitize(v)); err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, start, end, style)
}

func (w *sheetWriter) header(h document.HeaderBlock) error {
	badgeFrom := w.cols - 1
	if badgeFrom < 2 {
		badgeFrom = 2
	}
	first := w.row

	for i, line := range h.Company {
		style := w.st.muted
		if line.Emphasis {
			style = w.st.companyName
		}
		if err := w.put(1, badgeFrom-1, line.Text, style); err != nil {
			return err
		}
		if i < len(h.Company)-1 {
			w.row++
		}
	}
	last := w.row

	switch b := h.Badge.(type) {
	case document.TextBadge:
		lines := b.Lines()
		for i, text := range lines {
			r := first + i
			start, end := w.cell(badgeFrom, r), w.cell(w.cols, r)
			if err := w.f.MergeCell(w.sheet, start, end); err != nil {
				return err
			}
			if err := w.f.SetCellValue(w.sheet, start, Sanitize(text)); err != nil {
				return err
			}
			if err := w.f.SetCellStyle(w.sheet, start, end, w.st.badge); err != nil {
				return err
			}
		}
		if first+len(lines)-1 > last {
			last = first + len(lines) - 1
		}
	case document.ImageBadge:
		ext := "." + strings.ToLower(strings.TrimPrefix(b.Image.Format, "."))
		if err := w.f.AddPictureFromBytes(w.sheet, w.cell(badgeFrom, first), &excelize.Picture{
			Extension: ext,
			File:      b.Image.Data,
			Format:    &excelize.GraphicOptions{AutoFit: true, AltText: b.Image.Name},
		}); err != nil {
			return err
		}
	}
	w.row = last + 1
	return nil
}

func (w *sheetWriter) keyValue(kv document.KeyValueBlock) error {
	for _, group := range kv.Groups {
		for _, field := range group {
			if err := w.put(1, 1, field.Label, w.st.label); err != nil {
				return err
			}
			if err := w.put(2, w.cols, field.Value, w.st.value); err != nil {
				return err
			}
			w.row++
		}
	}
	return nil
}

func (w *sheetWriter) table(t document.TableBlock) error {
	for i, c := range t.Columns {
		if err := w.put(i+1, i+1, c.Header, w.st.header); err != nil {
			return err
		}
	}
	if err := w.f.SetRowHeight(w.sheet, w.row, 20); err != nil {
		return err
	}
	w.row++
	for _, values := range t.Rows {
		for i := range t.Columns {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			if err := w.put(i+1, i+1, v, w.st.cell); err != nil {
				return err
			}
		}
		w.row++
	}
	return nil
}

func (w *sheetWriter) totals(t document.TotalsBlock) error {
	for _, r := range t.Rows {
		style := w.st.total
		if r.Emphasis {
			style = w.st.emphasis
		}
		if err := w.put(w.cols-1, w.cols-1, r.Label, style); err != nil {
			return err
		}
		if err := w.put(w.cols, w.cols, r.Value, style); err != nil {
			return err
		}
		w.row++
	}
	return nil
}

func (w *sheetWriter) textList(l document.TextListBlock) error {
	if l.Title != "" {
		if err := w.put(1, w.cols, l.Title, w.st.companyName); err != nil {
			return err
		}
		w.row++
	}
	for _, item := range l.Items {
		if err := w.put(1, w.cols, "• "+item, w.st.muted); err != nil {
			return err
		}
		w.row++
	}
	return nil
}

func (w *sheetWriter) signatures(s document.SignatureBlock) error {
	w.row++
	for i, p := range s.Parties {
		col := 1 + i*2
		if col > w.cols {
			break
		}
		if err := w.put(col, col, "______________________", w.st.muted); err != nil {
			return err
		}
		name := w.cell(col, w.row+1)
		if err := w.f.SetCellValue(w.sheet, name, Sanitize(p)); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, name, name, w.st.total); err != nil {
			return err
		}
	}
	w.row += 2
	return nil
}

func wrap(err error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "xlsx: "+msg)
}
