package session

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/search"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

func resolved(ref string, amount int64) search.ResolvedProduct {
	v := catalog.PriceVariant{Key: "caldas", Label: "Caldas", Amount: decimal.NewFromInt(amount)}
	return search.ResolvedProduct{
		Product: catalog.Product{Reference: ref, Description: "Producto " + ref, PriceVariants: []catalog.PriceVariant{v}},
		Variant: v,
		Amount:  v.Amount,
	}
}

func addLines(t *testing.T, s *Session, refs ...string) {
	t.Helper()
	for _, ref := range refs {
		if err := s.AddLine(resolved(ref, 1), 1); err != nil {
			t.Fatalf("add %s: %v", ref, err)
		}
	}
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	s := New(time.Now())
	err := s.AddLine(resolved("TAB001", 1000), 0)

	var verr *quotation.ValidationError
	if !errors.As(err, &verr) || verr.Field != quotation.FieldQuantity {
		t.Fatalf("expected quantity validation error, got %v", err)
	}
	if len(s.Cart) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(s.Cart))
	}
}

func TestAddLineKeepsRepeatedReferencesSeparate(t *testing.T) {
	s := New(time.Now())
	for _, l := range []struct {
		ref    string
		amount int64
		qty    int
	}{{"TAB001", 1000, 2}, {"TAB001", 1000, 3}, {"LIS010", 500, 1}} {
		if err := s.AddLine(resolved(l.ref, l.amount), l.qty); err != nil {
			t.Fatalf("add %s: %v", l.ref, err)
		}
	}

	if len(s.Cart) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(s.Cart))
	}
	totals := s.Totals()
	if totals.Products != 2 || totals.Units != 6 {
		t.Fatalf("expected 2 products and 6 units, got %+v", totals)
	}
	if !totals.Subtotal.Equal(decimal.NewFromInt(5500)) {
		t.Fatalf("expected subtotal 5500, got %s", totals.Subtotal)
	}
}

func TestRemoveLine(t *testing.T) {
	s := New(time.Now())
	addLines(t, s, "A", "B", "C")

	line, err := s.RemoveLine(1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if line.Item.Product.Reference != "B" {
		t.Fatalf("expected B removed, got %s", line.Item.Product.Reference)
	}
	if len(s.Cart) != 2 || s.Cart[1].Item.Product.Reference != "C" {
		t.Fatalf("unexpected cart after removal %+v", s.Cart)
	}

	_, err = s.RemoveLine(5)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.RemoveLine(-1); err == nil {
		t.Fatal("expected error for negative index")
	}
}

func TestClearForgetsLastQuotation(t *testing.T) {
	s := New(time.Now())
	addLines(t, s, "A")
	s.LastQuotation = &quotation.Quotation{ID: "COT-1"}

	s.Clear()
	if s.Cart == nil || len(s.Cart) != 0 {
		t.Fatalf("expected empty non-nil cart, got %#v", s.Cart)
	}
	if s.LastQuotation != nil {
		t.Fatal("expected last quotation to be cleared")
	}
	if totals := s.Totals(); totals.Products != 0 || totals.Units != 0 || !totals.Subtotal.IsZero() {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestBranding(t *testing.T) {
	base := document.CompanyProfile{Name: "Base", City: "Manizales"}
	s := New(time.Now())
	if got := s.Branding(base); got != base {
		t.Fatalf("expected base profile, got %+v", got)
	}

	s.Company = &document.CompanyProfile{Name: "Maderas del Eje"}
	got := s.Branding(base)
	if got.Name != "Maderas del Eje" || got.City != "Manizales" {
		t.Fatalf("expected merged branding, got %+v", got)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(New(time.Now()).ID) {
		t.Fatal("expected generated id to be valid")
	}
	if ValidID("not-a-session") {
		t.Fatal("expected malformed id to be rejected")
	}
}
