package document

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/quotation"
)

func sampleQuotation(discount int64) *quotation.Quotation {
	created := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	subtotal := decimal.NewFromInt(130000)
	pct := decimal.NewFromInt(discount)
	amount := subtotal.Mul(pct).Div(decimal.NewFromInt(100))
	return &quotation.Quotation{
		ID:           "COT-202401-123456",
		CreatedAt:    created,
		ExpiresAt:    created.AddDate(0, 0, 30),
		Client:       quotation.ClientInfo{Name: "Ana Gómez", Phone: "3001234567"},
		VariantKey:   "caldas",
		VariantLabel: "Caldas",
		Lines: []quotation.Line{
			{Reference: "TABPIN001", Description: strings.Repeat("x", 55), Quantity: 2, UnitPrice: decimal.NewFromInt(50000), LineTotal: decimal.NewFromInt(100000)},
			{Reference: "LIS010", Description: strings.Repeat("y", 30), Quantity: 1, UnitPrice: decimal.NewFromInt(30000), LineTotal: decimal.NewFromInt(30000)},
		},
		Subtotal:        subtotal,
		DiscountPercent: pct,
		DiscountAmount:  amount,
		Total:           subtotal.Sub(amount),
		Terms:           append([]string(nil), quotation.DefaultTerms...),
	}
}

func encodedLogo(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func kinds(m Model) []BlockKind {
	out := []BlockKind{}
	for _, b := range m.Blocks {
		out = append(out, b.Kind())
	}
	return out
}

func findBlock(t *testing.T, m Model, kind BlockKind) Block {
	t.Helper()
	b, ok := m.Find(kind)
	if !ok {
		t.Fatalf("expected %s block in %v", kind, kinds(m))
	}
	return b
}

func TestBuildBlockOrder(t *testing.T) {
	t.Parallel()

	m := Build(sampleQuotation(10), CompanyProfile{}, Options{Signatures: []string{"Vendedor", "Cliente"}})
	want := []BlockKind{KindHeader, KindKeyValue, KindTable, KindTotals, KindTextList, KindSignature}
	if got := kinds(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected blocks %v, got %v", want, got)
	}
	if m.FileName != "Cotizacion_COT-202401-123456.pdf" {
		t.Fatalf("unexpected file name %q", m.FileName)
	}
	if m.Title != "COTIZACIÓN COT-202401-123456" {
		t.Fatalf("unexpected title %q", m.Title)
	}
}

func TestBuildOmitsOptionalBlocks(t *testing.T) {
	t.Parallel()

	q := sampleQuotation(0)
	q.Terms = nil
	want := []BlockKind{KindHeader, KindKeyValue, KindTable, KindTotals}
	if got := kinds(Build(q, CompanyProfile{}, Options{})); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected blocks %v, got %v", want, got)
	}
}

func TestBuildTruncatesDescriptions(t *testing.T) {
	t.Parallel()

	table := findBlock(t, Build(sampleQuotation(0), CompanyProfile{}, Options{}), KindTable).(TableBlock)

	if want := strings.Repeat("x", 40) + "..."; table.Rows[0][1] != want {
		t.Fatalf("expected truncated description, got %q", table.Rows[0][1])
	}
	if want := strings.Repeat("y", 30); table.Rows[1][1] != want {
		t.Fatalf("expected untouched description, got %q", table.Rows[1][1])
	}
	wantRow := []string{"TABPIN001", table.Rows[0][1], "2", "$ 50.000", "$ 100.000"}
	if !reflect.DeepEqual(table.Rows[0], wantRow) {
		t.Fatalf("expected row %v, got %v", wantRow, table.Rows[0])
	}

	weights := []float64{}
	for _, c := range table.Columns {
		weights = append(weights, c.Weight)
	}
	if want := []float64{1.5, 2.5, 0.8, 1.1, 1.1}; !reflect.DeepEqual(weights, want) {
		t.Fatalf("expected weights %v, got %v", want, weights)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"ññññ", 3, "ñññ..."},
		{"ñññ", 3, "ñññ"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestBuildTotals(t *testing.T) {
	t.Parallel()

	rows := findBlock(t, Build(sampleQuotation(10), CompanyProfile{}, Options{}), KindTotals).(TotalsBlock).Rows
	want := []TotalRow{
		{Label: "Subtotal:", Value: "$ 130.000"},
		{Label: "Descuento:", Value: "10% - $ 13.000"},
		{Label: "TOTAL:", Value: "$ 117.000", Emphasis: true},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("expected totals %+v, got %+v", want, rows)
	}

	rows = findBlock(t, Build(sampleQuotation(0), CompanyProfile{}, Options{}), KindTotals).(TotalsBlock).Rows
	if len(rows) != 2 || rows[1].Label != "TOTAL:" {
		t.Fatalf("expected subtotal and total only, got %+v", rows)
	}
}

func TestBuildClientPanelDefaults(t *testing.T) {
	t.Parallel()

	panel := findBlock(t, Build(sampleQuotation(0), CompanyProfile{}, Options{}), KindKeyValue).(KeyValueBlock)
	if len(panel.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(panel.Groups))
	}
	checks := []struct {
		got, want Field
	}{
		{panel.Groups[0][0], Field{Label: "Cliente:", Value: "Ana Gómez"}},
		{panel.Groups[0][1], Field{Label: "NIT/Cédula:", Value: "N/A"}},
		{panel.Groups[0][3], Field{Label: "Teléfono:", Value: "3001234567"}},
		{panel.Groups[1][0], Field{Label: "Ubicación:", Value: "Caldas"}},
		{panel.Groups[1][1], Field{Label: "Vencimiento:", Value: "14/02/2024"}},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("expected %+v, got %+v", c.want, c.got)
		}
	}

	q := sampleQuotation(0)
	q.VariantKey, q.VariantLabel = "", ""
	panel = findBlock(t, Build(q, CompanyProfile{}, Options{}), KindKeyValue).(KeyValueBlock)
	if got := panel.Groups[1][0]; got.Value != "N/A" {
		t.Fatalf("expected N/A location for a mixed cart, got %+v", got)
	}
}

func TestBuildHeaderFallsBackToTextBadge(t *testing.T) {
	t.Parallel()

	q := sampleQuotation(0)
	h := Build(q, CompanyProfile{Name: "Maderas del Chagualo", TaxID: "900.297.110-1"}, Options{}).Blocks[0].(HeaderBlock)
	if h.UsesLogo() {
		t.Fatal("expected text badge without a logo")
	}
	badge, ok := h.Badge.(TextBadge)
	if !ok {
		t.Fatalf("expected TextBadge, got %T", h.Badge)
	}
	if want := []string{"COTIZACIÓN", "No. COT-202401-123456", "Fecha: 15/01/2024"}; !reflect.DeepEqual(badge.Lines(), want) {
		t.Fatalf("expected badge %v, got %v", want, badge.Lines())
	}
	if want := (TextLine{Text: "Maderas del Chagualo", Emphasis: true}); h.Company[0] != want {
		t.Fatalf("expected %+v, got %+v", want, h.Company[0])
	}
	if h.Company[1].Text != "NIT: 900.297.110-1" || h.Company[2].Text != "Dirección" {
		t.Fatalf("unexpected company lines %+v", h.Company)
	}
}

func TestBuildHeaderUsesDecodableLogo(t *testing.T) {
	t.Parallel()

	q := sampleQuotation(0)
	for _, tc := range []struct{ format, encoding string }{
		{"png", "png"},
		{"PNG", "png"},
		{"jpg", "jpeg"},
		{"jpeg", "jpeg"},
	} {
		logo := &Image{Name: "logo." + tc.format, Format: tc.format, Data: encodedLogo(t, tc.encoding)}
		h := Build(q, CompanyProfile{}, Options{Logo: logo}).Blocks[0].(HeaderBlock)
		if !h.UsesLogo() {
			t.Fatalf("expected %s logo to be used", tc.format)
		}
		if got := h.Badge.(ImageBadge).Image.Name; got != logo.Name {
			t.Fatalf("expected badge image %s, got %s", logo.Name, got)
		}
	}
}

func TestBuildHeaderRejectsUnusableLogo(t *testing.T) {
	t.Parallel()

	q := sampleQuotation(0)
	cases := map[string]*Image{
		"no data":          {Name: "logo.png"},
		"unsupported gif":  {Name: "logo.gif", Format: "gif", Data: []byte("GIF89a\x01\x00\x01\x00")},
		"corrupt png":      {Name: "logo.png", Format: "png", Data: []byte{0x89, 'P', 'N', 'G'}},
		"format mismatch":  {Name: "logo.jpg", Format: "jpg", Data: encodedLogo(t, "png")},
		"missing format":   {Name: "logo", Data: encodedLogo(t, "png")},
		"unknown encoding": {Name: "logo.png", Format: "png", Data: []byte("not an image at all")},
	}
	for name, logo := range cases {
		h := Build(q, CompanyProfile{}, Options{Logo: logo}).Blocks[0].(HeaderBlock)
		if h.UsesLogo() {
			t.Errorf("%s: expected text badge fallback", name)
			continue
		}
		badge, ok := h.Badge.(TextBadge)
		if !ok || badge.Title != "COTIZACIÓN" {
			t.Errorf("%s: expected COTIZACIÓN text badge, got %#v", name, h.Badge)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	q := sampleQuotation(10)
	opts := Options{Signatures: []string{"Vendedor"}, Logo: &Image{Name: "l", Format: "png", Data: encodedLogo(t, "png")}}
	first := Build(q, CompanyProfile{Name: "X"}, opts)
	second := Build(q, CompanyProfile{Name: "X"}, opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical models for identical input")
	}
}

func TestBuildCustomLabels(t *testing.T) {
	t.Parallel()

	m := Build(sampleQuotation(0), CompanyProfile{}, Options{Labels: Labels{Title: "QUOTE", FilePrefix: "Quote"}})
	if m.FileName != "Quote_COT-202401-123456.pdf" {
		t.Fatalf("unexpected file name %q", m.FileName)
	}
	badge := m.Blocks[0].(HeaderBlock).Badge.(TextBadge)
	if badge.Title != "QUOTE" || badge.Number != "No. COT-202401-123456" {
		t.Fatalf("unexpected badge %+v", badge)
	}
}

func TestModelJSONTagsBlocks(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Build(sampleQuotation(10), CompanyProfile{}, Options{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Blocks []struct {
			Type string `json:"type"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(decoded.Blocks))
	}
	if decoded.Blocks[0].Type != "header" || decoded.Blocks[4].Type != "text-list" {
		t.Fatalf("unexpected block types %+v", decoded.Blocks)
	}
}

func TestCompanyProfileDefaultsAndMerge(t *testing.T) {
	t.Parallel()

	got := CompanyProfile{Name: "  ", City: "Medellín"}.WithDefaults()
	if got.Name != "Empresa" || got.City != "Medellín" || got.Email != "ventas@empresa.com" {
		t.Fatalf("unexpected defaults %+v", got)
	}

	merged := CompanyProfile{Name: "A", Phone: "1"}.Merge(CompanyProfile{Phone: "2", Email: "a@b.co"})
	if want := (CompanyProfile{Name: "A", Phone: "2", Email: "a@b.co"}); merged != want {
		t.Fatalf("expected %+v, got %+v", want, merged)
	}
}
