// Package session keeps the caller-owned quoting state: the cart being
// assembled, the issuer branding and the last quotation generated from it.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/search"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

type Session struct {
	ID            string                   `json:"id"`
	Cart          []quotation.CartLine     `json:"cart"`
	Company       *document.CompanyProfile `json:"company,omitempty"`
	LastQuotation *quotation.Quotation     `json:"last_quotation,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// Totals summarizes a cart.
type Totals struct {
	Products int             `json:"products"`
	Units    int             `json:"units"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func New(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), Cart: []quotation.CartLine{}, CreatedAt: now, UpdatedAt: now}
}

// ValidID reports whether id looks like a session id issued by New.
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// AddLine appends item to the cart. Repeated references stay separate lines.
func (s *Session) AddLine(item search.ResolvedProduct, qty int) error {
	if qty < 1 {
		return &quotation.ValidationError{
			Field:   quotation.FieldQuantity,
			Index:   len(s.Cart),
			Message: fmt.Sprintf("quantity must be at least 1, got %d", qty),
		}
	}
	s.Cart = append(s.Cart, quotation.CartLine{Item: item, Quantity: qty})
	return nil
}

// RemoveLine drops the line at index and returns it.
func (s *Session) RemoveLine(index int) (quotation.CartLine, error) {
	if index < 0 || index >= len(s.Cart) {
		return quotation.CartLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
			WithDetails(map[string]any{"index": index, "lines": len(s.Cart)})
	}
	line := s.Cart[index]
	s.Cart = append(s.Cart[:index], s.Cart[index+1:]...)
	return line, nil
}

// Clear empties the cart and forgets the last quotation.
func (s *Session) Clear() {
	s.Cart = []quotation.CartLine{}
	s.LastQuotation = nil
}

func (s *Session) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero}
	seen := map[string]struct{}{}
	for _, l := range s.Cart {
		seen[l.Item.Product.Reference] = struct{}{}
		t.Units += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Item.Amount.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	t.Products = len(seen)
	return t
}

// Branding returns the stored company profile merged over base.
func (s *Session) Branding(base document.CompanyProfile) document.CompanyProfile {
	if s.Company == nil {
		return base
	}
	return base.Merge(*s.Company)
}
