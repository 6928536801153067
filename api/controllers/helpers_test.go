package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/quotecatalog/api/middleware"
	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/quoting"
	"github.com/angelmondragon/quotecatalog/internal/render"
	"github.com/angelmondragon/quotecatalog/internal/session"
	"github.com/angelmondragon/quotecatalog/internal/sources"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

const priceListCSV = `Referencia;Desc. item;Desc. corta item;LP1;LP2;LP3
TABPIN001;Tabla pino 2x10;Tabla pino;50000;;52000
LIS010;Listón pino 1x2;Listón;30000;31000;32000
VIG100;Viga eucalipto;Viga;120000;125000;0
`

var fixedNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

// newQuotingService returns a service over a csv price list, already loaded.
func newQuotingService(t *testing.T) *quoting.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lista.csv")
	if err := os.WriteFile(path, []byte(priceListCSV), 0o600); err != nil {
		t.Fatalf("write price list: %v", err)
	}

	profile, ok := catalog.LookupProfile(catalog.ProfileMaderas)
	if !ok {
		t.Fatal("maderas profile not registered")
	}

	renderers := render.NewRegistry()
	renderers.Register(render.FormatJSON, render.JSON{})

	svc, err := quoting.NewService(quoting.ServiceParams{
		Logger:          logger.Nop(),
		Source:          sources.File{Path: path},
		Profile:         profile,
		RequireNonEmpty: true,
		Sessions:        session.NewMemoryStore(time.Hour),
		Calculator:      quotation.NewCalculator(quotation.CalculatorOptions{Now: func() time.Time { return fixedNow }}),
		Renderers:       renderers,
		Company:         document.CompanyProfile{Name: "Maderas del Eje"},
		DefaultLimit:    10,
		MaxLimit:        50,
		Now:             func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return svc
}

func newSession(t *testing.T, svc *quoting.Service) string {
	t.Helper()
	s, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s.ID
}

func sessionRequest(method, target, sessionID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
