// Package quotation computes priced, client-addressed quotations from cart
// lines. Amounts are kept exact; rounding is a display concern.
package quotation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/search"
)

const (
	DefaultValidityDays = 30
	DefaultMaxDiscount  = 50
)

// DefaultTerms are the general conditions printed on every quotation unless
// the caller supplies its own.
var DefaultTerms = []string{
	"Esta precotizacion no constituye un compromiso oficial",
	"Tiempos de entrega sujetos a disponibilidad",
	"Si necesitas ampliar o aceptar esta precotizacion, comunícate con nuestro equipo de ventas al 3046679856",
}

type CartLine struct {
	Item     search.ResolvedProduct `json:"item"`
	Quantity int                    `json:"quantity"`
}

type ClientInfo struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"tax_id,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type Options struct {
	VariantKey   string
	VariantLabel string
	// DiscountPercent is applied as given; callers clamp it with ClampDiscount.
	DiscountPercent decimal.Decimal
	ValidityDays    int
	Terms           []string
}

// Line is a cart line frozen at quotation time.
type Line struct {
	Reference        string            `json:"reference"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	Quantity         int               `json:"quantity"`
	UnitPrice        decimal.Decimal   `json:"unit_price"`
	LineTotal        decimal.Decimal   `json:"line_total"`
}

type Quotation struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
	ValidityDays    int             `json:"validity_days"`
	Client          ClientInfo      `json:"client"`
	VariantKey      string          `json:"variant"`
	VariantLabel    string          `json:"variant_label"`
	Lines           []Line          `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Terms           []string        `json:"terms,omitempty"`
}

// ItemCount is the sum of quantities over all lines.
func (q *Quotation) ItemCount() int {
	n := 0
	for _, l := range q.Lines {
		n += l.Quantity
	}
	return n
}

func (q *Quotation) HasDiscount() bool {
	return q.DiscountPercent.IsPositive()
}

// ClampDiscount bounds p to [0, max]. A non-positive max means DefaultMaxDiscount.
func ClampDiscount(p, max decimal.Decimal) decimal.Decimal {
	if !max.IsPositive() {
		max = decimal.NewFromInt(DefaultMaxDiscount)
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(max) {
		return max
	}
	return p
}
