package catalog

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

func maderas(t *testing.T) Profile {
	t.Helper()
	p, ok := LookupProfile(ProfileMaderas)
	if !ok {
		t.Fatal("maderas profile not registered")
	}
	return p
}

func lookup(t *testing.T, c *Catalog, ref string) Product {
	t.Helper()
	p, ok := c.Lookup(ref)
	if !ok {
		t.Fatalf("expected %s in catalog", ref)
	}
	return p
}

func expectAmount(t *testing.T, p Product, variant string, want int64) {
	t.Helper()
	if got := p.Amount(variant); !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s %s = %s, want %d", p.Reference, variant, got, want)
	}
}

func TestBuildDropsInvalidRows(t *testing.T) {
	rows := []RawRow{
		{"Referencia": "TAB001", "Desc. item": "Tabla pino 2m", "LP1": "$ 12,000"},
		{"Referencia": "  ", "Desc. item": "Sin referencia", "LP1": 100},
		{"Referencia": "TAB002", "Desc. item": "", "LP1": 100},
		{"Referencia": nil, "Desc. item": "Nula"},
		{"Referencia": "LIS010", "Desc. item": "Listón 3x3", "LP1": 4500.0},
		{"Desc. item": "Sin columna de referencia"},
	}

	c := mustBuild(t, rows, maderas(t))
	if want := (Stats{Rows: 6, Products: 2, Dropped: 4}); c.Stats() != want {
		t.Fatalf("expected stats %+v, got %+v", want, c.Stats())
	}

	products := c.Products()
	if len(products) != 2 || products[0].Reference != "TAB001" || products[1].Reference != "LIS010" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestBuildTrimsKeysAndValues(t *testing.T) {
	rows := []RawRow{
		{" Referencia ": "  TAB001 ", "Desc. item ": " Tabla pino ", " Desc. corta item": " Tabla ", "Notas ítem": " nota ", "LP1": "1000"},
	}
	p := lookup(t, mustBuild(t, rows, maderas(t)), "TAB001")
	if p.Description != "Tabla pino" || p.ShortDescription != "Tabla" || p.Notes != "nota" {
		t.Fatalf("expected trimmed text fields, got %+v", p)
	}
	expectAmount(t, p, "caldas", 1000)
}

func TestBuildTierFallback(t *testing.T) {
	rows := []RawRow{
		{"Referencia": "A1", "Desc. item": "Missing secondary", "LP1": 1000, "LP3": "2,500"},
		{"Referencia": "A2", "Desc. item": "Blank secondary", "LP1": 1000, "LP2": "  "},
		{"Referencia": "A3", "Desc. item": "NaN secondary", "LP1": 1000, "LP2": math.NaN()},
		{"Referencia": "A4", "Desc. item": "Own secondary", "LP1": 1000, "LP2": 900},
		{"Referencia": "A5", "Desc. item": "Garbage secondary", "LP1": 1000, "LP2": "N/A"},
	}
	c := mustBuild(t, rows, maderas(t))

	want := map[string]int64{"A1": 1000, "A2": 1000, "A3": 1000, "A4": 900, "A5": 0}
	for ref, amount := range want {
		expectAmount(t, lookup(t, c, ref), "cuiva", amount)
	}

	p := lookup(t, c, "A1")
	expectAmount(t, p, "chagualo", 2500)
	v, ok := p.Variant("cuiva")
	if !ok || v.Label != "Cuiva" {
		t.Fatalf("expected Cuiva variant, got %+v (%v)", v, ok)
	}
}

func TestBuildFallbackChain(t *testing.T) {
	profile := Profile{
		Name:              "chain",
		ReferenceColumn:   "ref",
		DescriptionColumn: "desc",
		Variants: []VariantSpec{
			{Key: "c", Column: "pc", FallbackTo: "b"},
			{Key: "b", Column: "pb", FallbackTo: "a"},
			{Key: "a", Column: "pa"},
		},
	}
	p := lookup(t, mustBuild(t, []RawRow{{"ref": "X", "desc": "chained", "pa": "750"}}, profile), "X")
	expectAmount(t, p, "c", 750)

	keys := []string{}
	for _, v := range p.PriceVariants {
		keys = append(keys, v.Key)
	}
	if !reflect.DeepEqual(keys, []string{"c", "b", "a"}) {
		t.Fatalf("expected variants in profile order, got %v", keys)
	}
}

func TestBuildDuplicatesFirstWins(t *testing.T) {
	rows := []RawRow{
		{"Referencia": "DUP", "Desc. item": "first", "LP1": 1},
		{"Referencia": "DUP ", "Desc. item": "second", "LP1": 2},
	}
	c := mustBuild(t, rows, maderas(t))
	if c.Len() != 1 || c.Stats().Duplicates != 1 {
		t.Fatalf("expected 1 product and 1 duplicate, got %d/%d", c.Len(), c.Stats().Duplicates)
	}
	if p := lookup(t, c, "DUP"); p.Description != "first" {
		t.Fatalf("expected first row to win, got %s", p.Description)
	}
}

func TestBuildEmptyResult(t *testing.T) {
	rows := []RawRow{{"Referencia": "", "Desc. item": "x"}}

	if c := mustBuild(t, rows, maderas(t)); c.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d", c.Len())
	}

	_, err := Build(rows, maderas(t), BuildOptions{RequireNonEmpty: true})
	var loadErr *CatalogLoadError
	if !errors.As(err, &loadErr) || loadErr.Reason != ReasonEmptyResult {
		t.Fatalf("expected empty result error, got %v", err)
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeCatalogUnavailable {
		t.Fatalf("expected catalog unavailable code, got %v", coded)
	}
}

func TestBuildInvalidProfile(t *testing.T) {
	_, err := Build(nil, Profile{Name: "broken"}, BuildOptions{})
	var loadErr *CatalogLoadError
	if !errors.As(err, &loadErr) || loadErr.Reason != ReasonInvalidProfile {
		t.Fatalf("expected invalid profile error, got %v", err)
	}
}

func TestBuildAttributes(t *testing.T) {
	p, ok := LookupProfile(ProfileInmunizados)
	if !ok {
		t.Fatal("inmunizados profile not registered")
	}
	rows := []RawRow{{
		"Referencia":     "POS200",
		"Descripción":    "Poste inmunizado 2m",
		"Tipo de madera": "Pino",
		"Acabado":        " Natural ",
		"Inmunizado":     "Sí",
		"Caldas con IVA": "$ 45,000",
	}}
	product := lookup(t, mustBuild(t, rows, p), "POS200")
	want := map[string]string{"madera": "Pino", "acabado": "Natural", "inmunizado": "Sí"}
	if !reflect.DeepEqual(product.Attributes, want) {
		t.Fatalf("expected attributes %v, got %v", want, product.Attributes)
	}
	expectAmount(t, product, "caldas-iva", 45000)
}

func TestBuildNumericReference(t *testing.T) {
	c := mustBuild(t, []RawRow{{"Referencia": 12345.0, "Desc. item": "Numérica"}}, maderas(t))
	lookup(t, c, "12345")
}

func TestBuildUsesClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c, err := Build(nil, maderas(t), BuildOptions{Now: func() time.Time { return at }})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !c.LoadedAt().Equal(at) {
		t.Fatalf("expected loaded_at %v, got %v", at, c.LoadedAt())
	}
}
