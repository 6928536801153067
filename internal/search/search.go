// Package search runs substring queries over a catalog and resolves each
// match to one price variant.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/pricing"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 200
)

const (
	ReasonEmpty     = "empty"
	ReasonNoMatches = "no-matches"
)

const (
	WarningConflictingAttributeFilter = "conflicting-attribute-filter"
	WarningUnknownVariant             = "unknown-variant"
)

type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
)

// AttributeFilter keeps (Include) or drops (Exclude) products whose attribute
// matches Value. A blank Value matches any non-empty attribute.
type AttributeFilter struct {
	Attribute string    `json:"attribute"`
	Value     string    `json:"value,omitempty"`
	Match     MatchMode `json:"match,omitempty"`
	Include   bool      `json:"include,omitempty"`
	Exclude   bool      `json:"exclude,omitempty"`
}

func (f AttributeFilter) matches(p catalog.Product) bool {
	got := strings.TrimSpace(p.Attribute(f.Attribute))
	want := strings.TrimSpace(f.Value)
	if want == "" {
		return got != ""
	}
	if f.Match == MatchContains {
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	return strings.EqualFold(got, want)
}

type Query struct {
	Term            string
	VariantKey      string
	Limit           int
	CategoryPrefix  string
	AttributeFilter *AttributeFilter
}

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResolvedProduct is a product paired with the price of one variant.
type ResolvedProduct struct {
	Product catalog.Product      `json:"product"`
	Variant catalog.PriceVariant `json:"variant"`
	Price   string               `json:"price"`
	Amount  decimal.Decimal      `json:"amount"`
}

type Result struct {
	Term       string            `json:"term"`
	VariantKey string            `json:"variant"`
	Limit      int               `json:"limit"`
	Items      []ResolvedProduct `json:"items"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}

// SearchError is returned for unusable input and for queries without matches.
// No matches is an expected outcome, not an engine failure.
type SearchError struct {
	Reason string
	Term   string
	// EmptyCatalog distinguishes a missing catalog from a blank term.
	EmptyCatalog bool
}

func (e *SearchError) Error() string {
	switch {
	case e.Reason == ReasonNoMatches:
		return fmt.Sprintf("search: no products match %q", e.Term)
	case e.EmptyCatalog:
		return "search: catalog is empty"
	}
	return "search: term is required"
}

func (e *SearchError) Coded() *pkgerrors.Error {
	switch {
	case e.Reason == ReasonNoMatches:
		return pkgerrors.New(pkgerrors.CodeNotFound, "no products match the search").
			WithDetails(map[string]any{"reason": e.Reason, "term": e.Term})
	case e.EmptyCatalog:
		return pkgerrors.New(pkgerrors.CodeCatalogUnavailable, "catalog is empty").
			WithDetails(map[string]any{"reason": e.Reason})
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "search term is required").
		WithDetails(map[string]string{"q": "is required"})
}

// IsNoMatches reports whether err is the no-matches outcome.
func IsNoMatches(err error) bool {
	var se *SearchError
	return errors.As(err, &se) && se.Reason == ReasonNoMatches
}

// NormalizeLimit applies the default and the upper bound.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Search returns the first Limit products, in catalog order, whose reference,
// description or short description contains the term.
func Search(c *catalog.Catalog, q Query) (*Result, error) {
	if c == nil || c.Len() == 0 {
		return nil, &SearchError{Reason: ReasonEmpty, Term: q.Term, EmptyCatalog: true}
	}
	term := strings.ToLower(strings.TrimSpace(q.Term))
	if term == "" {
		return nil, &SearchError{Reason: ReasonEmpty, Term: q.Term}
	}

	res := &Result{
		Term:  strings.TrimSpace(q.Term),
		Limit: NormalizeLimit(q.Limit),
	}

	res.VariantKey = strings.TrimSpace(q.VariantKey)
	if res.VariantKey == "" {
		res.VariantKey = c.DefaultVariant()
	}
	profile := c.Profile()
	spec, known := profile.VariantSpec(res.VariantKey)
	if !known {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarningUnknownVariant,
			Message: fmt.Sprintf("variant %q is not defined for catalog %q; prices resolve to 0", res.VariantKey, profile.Name),
		})
		spec = catalog.VariantSpec{Key: res.VariantKey, Label: res.VariantKey}
	}

	filter := q.AttributeFilter
	if filter != nil && filter.Include && filter.Exclude {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarningConflictingAttributeFilter,
			Message: fmt.Sprintf("include and exclude both set for attribute %q; filter ignored", filter.Attribute),
		})
		filter = nil
	}
	if filter != nil && !filter.Include && !filter.Exclude {
		filter = nil
	}

	prefix := strings.ToUpper(strings.TrimSpace(q.CategoryPrefix))

	c.Range(func(p catalog.Product) bool {
		if !matchesTerm(p, term) {
			return true
		}
		if prefix != "" && !strings.HasPrefix(strings.ToUpper(p.Reference), prefix) {
			return true
		}
		if filter != nil {
			hit := filter.matches(p)
			if filter.Include && !hit || filter.Exclude && hit {
				return true
			}
		}
		res.Items = append(res.Items, resolve(p.Clone(), spec))
		return len(res.Items) < res.Limit
	})

	if len(res.Items) == 0 {
		return nil, &SearchError{Reason: ReasonNoMatches, Term: res.Term}
	}
	return res, nil
}

func matchesTerm(p catalog.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.ShortDescription), term) ||
		strings.Contains(strings.ToLower(p.Reference), term)
}

// ResolveReference looks a product up by exact reference and resolves it to
// variantKey, or to the catalog default when variantKey is blank.
func ResolveReference(c *catalog.Catalog, reference, variantKey string) (ResolvedProduct, error) {
	if c == nil || c.Len() == 0 {
		return ResolvedProduct{}, &SearchError{Reason: ReasonEmpty, EmptyCatalog: true}
	}
	p, ok := c.Lookup(reference)
	if !ok {
		return ResolvedProduct{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]string{"reference": reference})
	}
	key := strings.TrimSpace(variantKey)
	if key == "" {
		key = c.DefaultVariant()
	}
	spec, known := c.Profile().VariantSpec(key)
	if !known {
		return ResolvedProduct{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown price variant").
			WithDetails(map[string]string{"variant": key})
	}
	return resolve(p, spec), nil
}

func resolve(p catalog.Product, spec catalog.VariantSpec) ResolvedProduct {
	variant, ok := p.Variant(spec.Key)
	if !ok {
		variant = catalog.PriceVariant{Key: spec.Key, Label: spec.Label, Amount: decimal.Zero}
	}
	return ResolvedProduct{
		Product: p,
		Variant: variant,
		Price:   pricing.Format(variant.Amount),
		Amount:  variant.Amount,
	}
}
