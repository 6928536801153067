package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Catalog is an immutable set of products built from one price list load.
type Catalog struct {
	profile  Profile
	products []Product
	index    map[string]int
	stats    Stats
	loadedAt time.Time
}

// Products returns a copy of the products in stored order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

// Range calls fn for every product in stored order until fn returns false.
// p shares its attributes and variants with the catalog; Clone it before
// keeping it.
func (c *Catalog) Range(fn func(Product) bool) {
	if c == nil {
		return
	}
	for _, p := range c.products {
		if !fn(p) {
			return
		}
	}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Lookup finds a product by its exact trimmed reference.
func (c *Catalog) Lookup(reference string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.index[strings.TrimSpace(reference)]
	if !ok {
		return Product{}, false
	}
	return c.products[i].Clone(), true
}

// Categories returns the sorted, de-duplicated reference prefixes.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	n := c.profile.categoryPrefixLength()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range c.products {
		cat := p.Category(n)
		if cat == "" {
			continue
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Profile() Profile {
	if c == nil {
		return Profile{}
	}
	return c.profile.clone()
}

// Variants returns the price variants every product carries, in profile order.
func (c *Catalog) Variants() []VariantSpec {
	if c == nil {
		return nil
	}
	return append([]VariantSpec(nil), c.profile.Variants...)
}

// DefaultVariant is the variant used when a caller does not pick one.
func (c *Catalog) DefaultVariant() string {
	if c == nil {
		return ""
	}
	return c.profile.DefaultVariantKey()
}

func (c *Catalog) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return c.stats
}

func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// Holder publishes the current catalog. A reload builds a new catalog and
// swaps it in whole.
type Holder struct {
	current atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	if c != nil {
		h.current.Store(c)
	}
	return h
}

// Load returns the current catalog, nil before the first successful load.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap installs next and returns the previous catalog.
func (h *Holder) Swap(next *Catalog) *Catalog {
	return h.current.Swap(next)
}
