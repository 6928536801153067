package catalog

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, p := range Profiles() {
		if err := p.Validate(); err != nil {
			t.Errorf("profile %s: %v", p.Name, err)
		}
	}
}

func TestValidateAggregatesProblems(t *testing.T) {
	p := Profile{
		Name: "bad",
		Variants: []VariantSpec{
			{Key: "a", Column: "A", FallbackTo: "b"},
			{Key: "b", Column: "B", FallbackTo: "a"},
			{Key: "a", Column: "C", FallbackTo: "b"},
			{Key: "d", FallbackTo: "missing"},
		},
		DefaultVariant: "zzz",
	}
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msgs := []string{}
	for _, e := range multierr.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		"reference column is required",
		"description column is required",
		"duplicate variant key \"a\"",
		"variant \"d\" has no column",
		"unknown variant \"missing\"",
		"fallback cycle",
		"default variant \"zzz\"",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in:\n%s", want, joined)
		}
	}
}

func TestValidateRequiresVariants(t *testing.T) {
	err := Profile{Name: "novariants", ReferenceColumn: "r", DescriptionColumn: "d"}.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one price variant") {
		t.Fatalf("expected missing variants error, got %v", err)
	}
}

func TestDefaultVariantKey(t *testing.T) {
	p := Profile{Variants: []VariantSpec{{Key: "x"}, {Key: "y"}}}
	if got := p.DefaultVariantKey(); got != "x" {
		t.Fatalf("expected first variant, got %s", got)
	}
	p.DefaultVariant = "y"
	if got := p.DefaultVariantKey(); got != "y" {
		t.Fatalf("expected configured default, got %s", got)
	}
}

func TestLookupProfile(t *testing.T) {
	p, ok := LookupProfile(" MADERAS ")
	if !ok || p.Variants[0].Column != "LP1" {
		t.Fatalf("expected maderas profile, got %+v (%v)", p, ok)
	}

	p.Variants[0].Column = "changed"
	if again, _ := LookupProfile(ProfileMaderas); again.Variants[0].Column != "LP1" {
		t.Fatalf("expected builtin profile to be isolated, got %s", again.Variants[0].Column)
	}

	custom := Profile{Name: "maderas", ReferenceColumn: "ref"}
	got, ok := LookupProfile("maderas", custom)
	if !ok || got.ReferenceColumn != "ref" {
		t.Fatalf("expected custom profile to win, got %+v", got)
	}

	if _, ok := LookupProfile("unknown"); ok {
		t.Fatal("expected unknown profile miss")
	}
}

func TestLoadProfiles(t *testing.T) {
	body := `[{
		"name": "ferreteria",
		"reference_column": "Código",
		"description_column": "Producto",
		"variants": [
			{"key": "publico", "label": "Público", "column": "Precio"},
			{"key": "contratista", "label": "Contratista", "column": "Precio contratista", "fallback_to": "publico"}
		],
		"category_prefix_length": 3
	}]`
	profiles, err := LoadProfiles(strings.NewReader(body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Variants[1].FallbackTo != "publico" || profiles[0].CategoryPrefixLength != 3 {
		t.Fatalf("unexpected profile %+v", profiles[0])
	}

	for _, bad := range []string{`[{"name": "x"}]`, `not json`, `[{"reference_column": "a"}]`} {
		if _, err := LoadProfiles(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}
