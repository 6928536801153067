package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/pricing"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const (
	ReasonEmptyResult    = "empty-result"
	ReasonInvalidProfile = "invalid-profile"
)

// CatalogLoadError reports a catalog that could not be built.
type CatalogLoadError struct {
	Reason  string
	Profile string
	Err     error
}

func (e *CatalogLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %q: %s: %v", e.Profile, e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog %q: %s", e.Profile, e.Reason)
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }

func (e *CatalogLoadError) Coded() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeCatalogUnavailable, e.Err, "catalog could not be loaded").
		WithDetails(map[string]any{"reason": e.Reason, "profile": e.Profile})
}

type BuildOptions struct {
	// RequireNonEmpty makes a catalog with zero surviving rows an error.
	RequireNonEmpty bool
	Now             func() time.Time
}

// Stats summarizes what happened to the raw rows during a build.
type Stats struct {
	Rows       int `json:"rows"`
	Products   int `json:"products"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
}

// Build normalizes raw rows into an immutable catalog. Rows missing a
// reference or a description are dropped, not reported.
func Build(rows []RawRow, profile Profile, opts BuildOptions) (*Catalog, error) {
	if err := profile.Validate(); err != nil {
		return nil, &CatalogLoadError{Reason: ReasonInvalidProfile, Profile: profile.Name, Err: err}
	}
	profile = profile.clone()

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	order := fallbackOrder(profile.Variants)
	attrKeys := profile.attributeKeys()

	c := &Catalog{
		profile: profile,
		index:   make(map[string]int, len(rows)),
	}
	c.stats.Rows = len(rows)

	for _, raw := range rows {
		row := trimKeys(raw)

		ref := cellText(row[profile.ReferenceColumn])
		desc := cellText(row[profile.DescriptionColumn])
		if ref == "" || desc == "" {
			c.stats.Dropped++
			continue
		}
		if _, dup := c.index[ref]; dup {
			c.stats.Duplicates++
			continue
		}

		product := Product{
			Reference:        ref,
			Description:      desc,
			ShortDescription: cellText(row[profile.ShortDescriptionColumn]),
			Notes:            cellText(row[profile.NotesColumn]),
			PriceVariants:    resolveVariants(row, profile.Variants, order),
		}
		if len(attrKeys) > 0 {
			product.Attributes = make(map[string]string, len(attrKeys))
			for _, key := range attrKeys {
				if v := cellText(row[profile.AttributeColumns[key]]); v != "" {
					product.Attributes[key] = v
				}
			}
		}

		c.index[ref] = len(c.products)
		c.products = append(c.products, product)
	}
	c.stats.Products = len(c.products)
	c.loadedAt = now()

	if opts.RequireNonEmpty && len(c.products) == 0 {
		return nil, &CatalogLoadError{Reason: ReasonEmptyResult, Profile: profile.Name}
	}
	return c, nil
}

// resolveVariants normalizes each price column, then fills missing columns
// from their fallback variant. order lists variants with fallbacks after
// their targets.
func resolveVariants(row RawRow, specs []VariantSpec, order []int) []PriceVariant {
	amounts := make(map[string]decimal.Decimal, len(specs))
	for _, i := range order {
		spec := specs[i]
		cell, present := row[spec.Column]
		if present && !isBlank(cell) {
			amounts[spec.Key] = pricing.Normalize(cell)
			continue
		}
		if spec.FallbackTo != "" {
			amounts[spec.Key] = amounts[spec.FallbackTo]
			continue
		}
		amounts[spec.Key] = decimal.Zero
	}

	out := make([]PriceVariant, 0, len(specs))
	for _, spec := range specs {
		out = append(out, PriceVariant{Key: spec.Key, Label: spec.Label, Amount: amounts[spec.Key]})
	}
	return out
}

// fallbackOrder sorts variant indexes so every fallback target comes before
// the variants that depend on it. The profile is already known to be acyclic.
func fallbackOrder(specs []VariantSpec) []int {
	byKey := make(map[string]int, len(specs))
	for i, s := range specs {
		byKey[s.Key] = i
	}
	visited := make([]bool, len(specs))
	order := make([]int, 0, len(specs))
	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		if target, ok := byKey[specs[i].FallbackTo]; ok && specs[i].FallbackTo != "" {
			visit(target)
		}
		order = append(order, i)
	}
	for i := range specs {
		visit(i)
	}
	return order
}

func trimKeys(row RawRow) RawRow {
	out := make(RawRow, len(row))
	for k, v := range row {
		key := strings.TrimSpace(k)
		if _, exists := out[key]; exists && isBlank(v) {
			continue
		}
		out[key] = v
	}
	return out
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return strings.TrimSpace(string(val)) == ""
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	}
	return false
}

// cellText renders a cell as trimmed text. Integral floats lose their ".0".
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return cellText(float64(val))
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
