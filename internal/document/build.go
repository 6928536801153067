package document

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/quotecatalog/internal/pricing"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
)

const (
	DefaultDescriptionLimit = 40
	ellipsis                = "..."
	dateLayout              = "02/01/2006"
)

// Column weights of the item table, in the order of its columns.
var itemWeights = []float64{1.5, 2.5, 0.8, 1.1, 1.1}

type Options struct {
	Logo             *Image
	Signatures       []string
	DescriptionLimit int
	Labels           Labels
}

// Build lays out q for company. It has no side effects: the same inputs
// always produce an equal model.
func Build(q *quotation.Quotation, company CompanyProfile, opts Options) Model {
	labels := opts.Labels.withDefaults()
	company = company.WithDefaults()
	limit := opts.DescriptionLimit
	if limit <= 0 {
		limit = DefaultDescriptionLimit
	}

	m := Model{
		Title:    labels.Title + " " + q.ID,
		FileName: FileName(labels.FilePrefix, q.ID),
	}
	m.Blocks = append(m.Blocks,
		header(q, company, opts.Logo, labels),
		clientPanel(q, labels),
		itemTable(q, limit, labels),
		totals(q, labels),
	)
	if len(q.Terms) > 0 {
		m.Blocks = append(m.Blocks, TextListBlock{
			Name:  "terms",
			Title: labels.Terms,
			Items: append([]string(nil), q.Terms...),
		})
	}
	if len(opts.Signatures) > 0 {
		m.Blocks = append(m.Blocks, SignatureBlock{Parties: append([]string(nil), opts.Signatures...)})
	}
	return m
}

// FileName is "<prefix>_<id>.pdf".
func FileName(prefix, id string) string {
	if prefix == "" {
		prefix = DefaultLabels().FilePrefix
	}
	return prefix + "_" + id + ".pdf"
}

func header(q *quotation.Quotation, company CompanyProfile, logo *Image, labels Labels) HeaderBlock {
	h := HeaderBlock{
		Company: []TextLine{
			{Text: company.Name, Emphasis: true},
			{Text: labels.TaxIDPrefix + " " + company.TaxID},
			{Text: company.Address},
			{Text: labels.PhonePrefix + " " + company.Phone},
			{Text: company.City},
			{Text: company.Email},
		},
	}
	if logo.Usable() {
		img := *logo
		img.Data = append([]byte(nil), logo.Data...)
		h.Badge = ImageBadge{Image: img}
		return h
	}
	h.Badge = TextBadge{
		Title:  labels.Title,
		Number: labels.Number + " " + q.ID,
		Date:   labels.Date + " " + q.CreatedAt.Format(dateLayout),
	}
	return h
}

func clientPanel(q *quotation.Quotation, labels Labels) KeyValueBlock {
	na := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return labels.NotAvailable
		}
		return v
	}
	return KeyValueBlock{
		Name: "client",
		Groups: [][]Field{
			{
				{Label: labels.Client, Value: q.Client.Name},
				{Label: labels.ClientTaxID, Value: na(q.Client.TaxID)},
				{Label: labels.Company, Value: na(q.Client.Company)},
				{Label: labels.Phone, Value: na(q.Client.Phone)},
				{Label: labels.Email, Value: na(q.Client.Email)},
			},
			{
				{Label: labels.Location, Value: na(q.VariantLabel)},
				{Label: labels.Expiry, Value: q.ExpiresAt.Format(dateLayout)},
			},
		},
		Weights: []float64{4, 2.5},
	}
}

func itemTable(q *quotation.Quotation, limit int, labels Labels) TableBlock {
	t := TableBlock{
		Name: "items",
		Columns: []Column{
			{Header: labels.Reference, Weight: itemWeights[0], Align: AlignCenter},
			{Header: labels.Description, Weight: itemWeights[1], Align: AlignLeft},
			{Header: labels.Quantity, Weight: itemWeights[2], Align: AlignCenter},
			{Header: labels.UnitPrice, Weight: itemWeights[3], Align: AlignRight},
			{Header: labels.LineTotal, Weight: itemWeights[4], Align: AlignRight},
		},
		Rows: make([][]string, 0, len(q.Lines)),
	}
	for _, l := range q.Lines {
		t.Rows = append(t.Rows, []string{
			l.Reference,
			Truncate(l.Description, limit),
			strconv.Itoa(l.Quantity),
			pricing.Format(l.UnitPrice),
			pricing.Format(l.LineTotal),
		})
	}
	return t
}

func totals(q *quotation.Quotation, labels Labels) TotalsBlock {
	b := TotalsBlock{Rows: []TotalRow{{Label: labels.Subtotal, Value: pricing.Format(q.Subtotal)}}}
	if q.HasDiscount() {
		b.Rows = append(b.Rows, TotalRow{
			Label: labels.Discount,
			Value: pricing.Percent(q.DiscountPercent) + " - " + pricing.Format(q.DiscountAmount),
		})
	}
	b.Rows = append(b.Rows, TotalRow{Label: labels.Total, Value: pricing.Format(q.Total), Emphasis: true})
	return b
}

// Truncate shortens s to limit runes followed by "..." when it is longer.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}
