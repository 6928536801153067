package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow is one record of a price list: column name to raw cell value.
type RawRow map[string]any

// PriceVariant is one price axis value of a product, e.g. a location or a tier.
type PriceVariant struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type Product struct {
	Reference        string            `json:"reference"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	PriceVariants    []PriceVariant    `json:"price_variants"`
}

// Variant returns the price variant stored under key.
func (p Product) Variant(key string) (PriceVariant, bool) {
	for _, v := range p.PriceVariants {
		if v.Key == key {
			return v, true
		}
	}
	return PriceVariant{}, false
}

// Amount returns the price for key, or zero when the product lacks it.
func (p Product) Amount(key string) decimal.Decimal {
	if v, ok := p.Variant(key); ok {
		return v.Amount
	}
	return decimal.Zero
}

// Attribute returns the attribute value, empty when absent.
func (p Product) Attribute(name string) string {
	return p.Attributes[name]
}

// Category returns the first n runes of the reference.
func (p Product) Category(n int) string {
	return prefixRunes(p.Reference, n)
}

// Clone returns a copy that shares no maps or slices with p.
func (p Product) Clone() Product {
	out := p
	if p.Attributes != nil {
		out.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	out.PriceVariants = append([]PriceVariant(nil), p.PriceVariants...)
	return out
}

func prefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.TrimSpace(string(runes))
}
