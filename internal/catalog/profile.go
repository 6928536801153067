package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

const DefaultCategoryPrefixLength = 6

// VariantSpec maps one price column to a variant key. FallbackTo names the
// variant whose amount is used when this column is missing in a row.
type VariantSpec struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Column     string `json:"column"`
	FallbackTo string `json:"fallback_to,omitempty"`
}

// Profile describes how the columns of one price list map to product fields.
type Profile struct {
	Name                   string            `json:"name"`
	ReferenceColumn        string            `json:"reference_column"`
	DescriptionColumn      string            `json:"description_column"`
	ShortDescriptionColumn string            `json:"short_description_column,omitempty"`
	NotesColumn            string            `json:"notes_column,omitempty"`
	AttributeColumns       map[string]string `json:"attribute_columns,omitempty"`
	Variants               []VariantSpec     `json:"variants"`
	DefaultVariant         string            `json:"default_variant,omitempty"`
	CategoryPrefixLength   int               `json:"category_prefix_length,omitempty"`
}

// Validate reports every misconfiguration at once.
func (p Profile) Validate() error {
	var err error
	if strings.TrimSpace(p.ReferenceColumn) == "" {
		err = multierr.Append(err, fmt.Errorf("profile %q: reference column is required", p.Name))
	}
	if strings.TrimSpace(p.DescriptionColumn) == "" {
		err = multierr.Append(err, fmt.Errorf("profile %q: description column is required", p.Name))
	}
	if len(p.Variants) == 0 {
		err = multierr.Append(err, fmt.Errorf("profile %q: at least one price variant is required", p.Name))
	}
	if p.CategoryPrefixLength < 0 {
		err = multierr.Append(err, fmt.Errorf("profile %q: category prefix length must not be negative", p.Name))
	}

	keys := make(map[string]struct{}, len(p.Variants))
	for i, v := range p.Variants {
		if strings.TrimSpace(v.Key) == "" {
			err = multierr.Append(err, fmt.Errorf("profile %q: variant %d has no key", p.Name, i))
			continue
		}
		if strings.TrimSpace(v.Column) == "" {
			err = multierr.Append(err, fmt.Errorf("profile %q: variant %q has no column", p.Name, v.Key))
		}
		if _, dup := keys[v.Key]; dup {
			err = multierr.Append(err, fmt.Errorf("profile %q: duplicate variant key %q", p.Name, v.Key))
		}
		keys[v.Key] = struct{}{}
	}

	for _, v := range p.Variants {
		if v.FallbackTo == "" {
			continue
		}
		if _, ok := keys[v.FallbackTo]; !ok {
			err = multierr.Append(err, fmt.Errorf("profile %q: variant %q falls back to unknown variant %q", p.Name, v.Key, v.FallbackTo))
		}
	}
	if cycle := p.fallbackCycle(); cycle != "" {
		err = multierr.Append(err, fmt.Errorf("profile %q: fallback cycle through variant %q", p.Name, cycle))
	}

	if p.DefaultVariant != "" {
		if _, ok := keys[p.DefaultVariant]; !ok {
			err = multierr.Append(err, fmt.Errorf("profile %q: default variant %q is not defined", p.Name, p.DefaultVariant))
		}
	}
	return err
}

func (p Profile) fallbackCycle() string {
	next := make(map[string]string, len(p.Variants))
	for _, v := range p.Variants {
		next[v.Key] = v.FallbackTo
	}
	for _, v := range p.Variants {
		seen := map[string]bool{v.Key: true}
		for cur := next[v.Key]; cur != ""; cur = next[cur] {
			if seen[cur] {
				return v.Key
			}
			seen[cur] = true
		}
	}
	return ""
}

// DefaultVariantKey is DefaultVariant, or the first variant when unset.
func (p Profile) DefaultVariantKey() string {
	if p.DefaultVariant != "" {
		return p.DefaultVariant
	}
	if len(p.Variants) > 0 {
		return p.Variants[0].Key
	}
	return ""
}

// VariantSpec returns the spec registered for key.
func (p Profile) VariantSpec(key string) (VariantSpec, bool) {
	for _, v := range p.Variants {
		if v.Key == key {
			return v, true
		}
	}
	return VariantSpec{}, false
}

func (p Profile) categoryPrefixLength() int {
	if p.CategoryPrefixLength <= 0 {
		return DefaultCategoryPrefixLength
	}
	return p.CategoryPrefixLength
}

func (p Profile) clone() Profile {
	out := p
	out.Variants = append([]VariantSpec(nil), p.Variants...)
	if p.AttributeColumns != nil {
		out.AttributeColumns = make(map[string]string, len(p.AttributeColumns))
		for k, v := range p.AttributeColumns {
			out.AttributeColumns[k] = v
		}
	}
	return out
}

// attributeKeys returns the attribute names in a stable order.
func (p Profile) attributeKeys() []string {
	keys := make([]string, 0, len(p.AttributeColumns))
	for k := range p.AttributeColumns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadProfiles decodes a JSON array of profiles and validates each of them.
func LoadProfiles(r io.Reader) ([]Profile, error) {
	var profiles []Profile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	var err error
	for _, p := range profiles {
		if strings.TrimSpace(p.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("profile without name"))
			continue
		}
		err = multierr.Append(err, p.Validate())
	}
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
