package quoting

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/render"
	"github.com/angelmondragon/quotecatalog/internal/search"
	"github.com/angelmondragon/quotecatalog/internal/session"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
	"github.com/angelmondragon/quotecatalog/pkg/metrics"
)

type fakeSource struct {
	rows []catalog.RawRow
	err  error
}

func (f *fakeSource) Name() string { return "fake.xlsx" }

func (f *fakeSource) Rows(ctx context.Context) ([]catalog.RawRow, error) {
	return f.rows, f.err
}

func priceRows() []catalog.RawRow {
	return []catalog.RawRow{
		{"Referencia": "TABPIN001", "Desc. item": "Tabla pino 2x10", "Desc. corta item": "Tabla pino", "LP1": 50000.0, "LP2": nil, "LP3": 52000.0},
		{"Referencia": "LIS010", "Desc. item": "Listón pino 1x2", "LP1": "30000", "LP2": "31000", "LP3": "32000"},
		{"Referencia": "VIG100", "Desc. item": "Viga eucalipto", "LP1": 120000.0, "LP2": 125000.0, "LP3": 0.0},
		{"Referencia": "", "Desc. item": "fila sin referencia", "LP1": 1.0},
	}
}

type fixture struct {
	svc    *Service
	source *fakeSource
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	profile, ok := catalog.LookupProfile(catalog.ProfileMaderas)
	if !ok {
		t.Fatal("maderas profile not registered")
	}

	src := &fakeSource{rows: priceRows()}
	reg := prometheus.NewRegistry()
	renderers := render.NewRegistry()
	renderers.Register(render.FormatJSON, render.JSON{})
	fixed := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	svc, err := NewService(ServiceParams{
		Logger:          logger.Nop(),
		Source:          src,
		Profile:         profile,
		RequireNonEmpty: true,
		Sessions:        session.NewMemoryStore(time.Hour),
		Calculator:      quotation.NewCalculator(quotation.CalculatorOptions{Now: func() time.Time { return fixed }}),
		Renderers:       renderers,
		Metrics:         metrics.NewQuoting(reg),
		Company:         document.CompanyProfile{Name: "Maderas del Eje", City: "Manizales"},
		DefaultLimit:    10,
		MaxLimit:        2,
		MaxDiscount:     decimal.NewFromInt(50),
		Now:             func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return fixture{svc: svc, source: src, reg: reg}
}

// loaded returns a fixture with the catalog loaded and a fresh session.
func loaded(t *testing.T) (fixture, *session.Session) {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	sess, err := f.svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return f, sess
}

func expectCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != want {
		t.Fatalf("expected code %s, got %v", want, err)
	}
}

func addToCart(t *testing.T, f fixture, id, ref, variant string, qty int) {
	t.Helper()
	if _, err := f.svc.AddToCart(context.Background(), id, ref, variant, qty); err != nil {
		t.Fatalf("add %s: %v", ref, err)
	}
}

func TestNewServiceRequiresWiring(t *testing.T) {
	profile, _ := catalog.LookupProfile(catalog.ProfileMaderas)
	cases := []struct {
		want   string
		params ServiceParams
	}{
		{"logger", ServiceParams{Source: &fakeSource{}, Sessions: session.NewMemoryStore(0), Profile: profile}},
		{"source", ServiceParams{Logger: logger.Nop(), Sessions: session.NewMemoryStore(0), Profile: profile}},
		{"session", ServiceParams{Logger: logger.Nop(), Source: &fakeSource{}, Profile: profile}},
		{"broken", ServiceParams{Logger: logger.Nop(), Source: &fakeSource{}, Sessions: session.NewMemoryStore(0), Profile: catalog.Profile{Name: "broken"}}},
	}
	for _, tc := range cases {
		_, err := NewService(tc.params)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("expected error mentioning %q, got %v", tc.want, err)
		}
	}
}

func TestReloadSwapsCatalogAndKeepsPreviousOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if f.svc.Catalog() != nil {
		t.Fatal("expected no catalog before the first reload")
	}

	stats, err := f.svc.Reload(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stats.Products != 3 || stats.Dropped != 1 {
		t.Fatalf("expected 3 products and 1 dropped, got %+v", stats)
	}
	first := f.svc.Catalog()
	if first == nil {
		t.Fatal("expected a catalog after reload")
	}

	f.source.err = errors.New("disk gone")
	_, err = f.svc.Reload(ctx)
	expectCode(t, err, pkgerrors.CodeCatalogUnavailable)
	if f.svc.Catalog() != first {
		t.Fatal("expected failed reload to keep the previous catalog")
	}

	f.source.err = nil
	f.source.rows = nil
	_, err = f.svc.Reload(ctx)
	var loadErr *catalog.CatalogLoadError
	if !errors.As(err, &loadErr) || loadErr.Reason != catalog.ReasonEmptyResult {
		t.Fatalf("expected empty result error, got %v", err)
	}
	if f.svc.Catalog() != first {
		t.Fatal("expected empty reload to keep the previous catalog")
	}
}

func TestSearchCapsLimitAndReportsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// catalog not loaded yet
	_, err := f.svc.Search(ctx, search.Query{Term: "pino"})
	expectCode(t, err, pkgerrors.CodeCatalogUnavailable)

	if _, err := f.svc.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	res, err := f.svc.Search(ctx, search.Query{Term: "i", Limit: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Limit != 2 || len(res.Items) != 2 {
		t.Fatalf("expected limit capped to 2, got limit %d with %d items", res.Limit, len(res.Items))
	}

	res, err = f.svc.Search(ctx, search.Query{Term: "tabla", VariantKey: "cuiva"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	if !res.Items[0].Amount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected cuiva to fall back to caldas 50000, got %s", res.Items[0].Amount)
	}

	if _, err := f.svc.Search(ctx, search.Query{Term: "roble"}); !search.IsNoMatches(err) {
		t.Fatalf("expected no matches, got %v", err)
	}

	if got := f.svc.Categories(); !reflect.DeepEqual(got, []string{"LIS010", "TABPIN", "VIG100"}) {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestCartAndQuotationFlow(t *testing.T) {
	f, sess := loaded(t)
	ctx := context.Background()

	_, err := f.svc.LatestQuotation(ctx, sess.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)

	addToCart(t, f, sess.ID, "TABPIN001", "", 2)
	addToCart(t, f, sess.ID, " LIS010 ", "caldas", 1)
	_, err = f.svc.AddToCart(ctx, sess.ID, "NOPE", "", 1)
	expectCode(t, err, pkgerrors.CodeNotFound)
	_, err = f.svc.AddToCart(ctx, sess.ID, "LIS010", "", 0)
	expectCode(t, err, pkgerrors.CodeValidation)

	q, err := f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{
		Client:          quotation.ClientInfo{Name: "  Ana Gómez "},
		DiscountPercent: decimal.NewFromInt(80),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if q.Client.Name != "Ana Gómez" {
		t.Fatalf("expected trimmed client name, got %q", q.Client.Name)
	}
	if !q.Subtotal.Equal(decimal.NewFromInt(130000)) {
		t.Fatalf("expected subtotal 130000, got %s", q.Subtotal)
	}
	if !q.DiscountPercent.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected discount clamped to 50, got %s", q.DiscountPercent)
	}
	if !q.Total.Equal(decimal.NewFromInt(65000)) {
		t.Fatalf("expected total 65000, got %s", q.Total)
	}
	if q.VariantLabel != "Caldas" {
		t.Fatalf("expected Caldas, got %q", q.VariantLabel)
	}

	latest, err := f.svc.LatestQuotation(ctx, sess.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != q.ID {
		t.Fatalf("expected latest %s, got %s", q.ID, latest.ID)
	}

	stored, err := f.svc.Session(ctx, sess.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(stored.Cart) != 2 {
		t.Fatalf("expected generating to keep the cart, got %d lines", len(stored.Cart))
	}

	if _, err := f.svc.RemoveFromCart(ctx, sess.ID, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cleared, err := f.svc.ClearCart(ctx, sess.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(cleared.Cart) != 0 || cleared.LastQuotation != nil {
		t.Fatalf("expected cleared session, got %+v", cleared)
	}
}

func TestGenerateQuotationRepricesForVariant(t *testing.T) {
	f, sess := loaded(t)
	ctx := context.Background()
	addToCart(t, f, sess.ID, "TABPIN001", "caldas", 1)

	q, err := f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{
		Client:  quotation.ClientInfo{Name: "Ana"},
		Variant: "chagualo",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if q.VariantKey != "chagualo" || q.VariantLabel != "Chagualo" {
		t.Fatalf("expected chagualo, got %s/%s", q.VariantKey, q.VariantLabel)
	}
	if !q.Total.Equal(decimal.NewFromInt(52000)) {
		t.Fatalf("expected total 52000, got %s", q.Total)
	}

	_, err = f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{Client: quotation.ClientInfo{Name: "Ana"}, Variant: "bogota"})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGenerateQuotationMixedCartHasNoLocation(t *testing.T) {
	f, sess := loaded(t)
	addToCart(t, f, sess.ID, "TABPIN001", "caldas", 1)
	addToCart(t, f, sess.ID, "LIS010", "cuiva", 1)

	q, err := f.svc.GenerateQuotation(context.Background(), sess.ID, QuoteRequest{Client: quotation.ClientInfo{Name: "Ana"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if q.VariantKey != "" || q.VariantLabel != "" {
		t.Fatalf("expected no location for a mixed cart, got %s/%s", q.VariantKey, q.VariantLabel)
	}
	if !q.Subtotal.Equal(decimal.NewFromInt(81000)) {
		t.Fatalf("expected each line at its own price, got %s", q.Subtotal)
	}
}

func TestGenerateQuotationValidation(t *testing.T) {
	f, sess := loaded(t)
	ctx := context.Background()

	_, err := f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{Client: quotation.ClientInfo{Name: "Ana"}})
	var verr *quotation.ValidationError
	if !errors.As(err, &verr) || verr.Field != quotation.FieldLines {
		t.Fatalf("expected lines validation error, got %v", err)
	}

	addToCart(t, f, sess.ID, "VIG100", "", 1)
	_, err = f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{Client: quotation.ClientInfo{Name: "   "}})
	if !errors.As(err, &verr) || verr.Field != quotation.FieldClientName {
		t.Fatalf("expected client name validation error, got %v", err)
	}

	_, err = f.svc.GenerateQuotation(ctx, "missing", QuoteRequest{Client: quotation.ClientInfo{Name: "Ana"}})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestRenderLatestAppliesAndRemembersBranding(t *testing.T) {
	f, sess := loaded(t)
	ctx := context.Background()

	_, err := f.svc.RenderLatest(ctx, sess.ID, "json", nil)
	expectCode(t, err, pkgerrors.CodeNotFound)

	addToCart(t, f, sess.ID, "TABPIN001", "", 2)
	q, err := f.svc.GenerateQuotation(ctx, sess.ID, QuoteRequest{Client: quotation.ClientInfo{Name: "Ana"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	doc, err := f.svc.RenderLatest(ctx, sess.ID, "json", &document.CompanyProfile{Name: "Inmunizados SAS"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.FileName != "Cotizacion_"+q.ID+".json" || doc.ContentType != "application/json" {
		t.Fatalf("unexpected document metadata %s %s", doc.FileName, doc.ContentType)
	}
	for _, want := range []string{"Inmunizados SAS", "Manizales"} {
		if !strings.Contains(string(doc.Body), want) {
			t.Errorf("expected document to contain %q", want)
		}
	}

	doc, err = f.svc.RenderLatest(ctx, sess.ID, "json", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(doc.Body), "Inmunizados SAS") {
		t.Fatal("expected branding to be remembered")
	}

	var decoded map[string]any
	if err := json.Unmarshal(doc.Body, &decoded); err != nil {
		t.Fatalf("decode document: %v", err)
	}

	latest, err := f.svc.LatestQuotation(ctx, sess.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != q.ID {
		t.Fatalf("expected rendering not to create a quotation, got %s", latest.ID)
	}

	_, err = f.svc.RenderLatest(ctx, sess.ID, "docx", nil)
	expectCode(t, err, pkgerrors.CodeValidation)
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func TestCloseAggregatesErrors(t *testing.T) {
	profile, _ := catalog.LookupProfile(catalog.ProfileMaderas)
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Source:   &fakeSource{},
		Profile:  profile,
		Sessions: session.NewMemoryStore(0),
		Closers: []io.Closer{
			closerFunc(func() error { return errors.New("db") }),
			nil,
			closerFunc(func() error { return errors.New("redis") }),
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	err = svc.Close()
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 close errors, got %d (%v)", n, err)
	}
}

func TestRunReloaderStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.RunReloader(ctx, 5*time.Millisecond) }()

	deadline := time.Now().Add(time.Second)
	for f.svc.Catalog() == nil {
		if time.Now().After(deadline) {
			t.Fatal("reloader never loaded the catalog")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop")
	}
}
