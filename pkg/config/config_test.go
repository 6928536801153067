package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.App.Port)
	}
	if cfg.Catalog.Profile != "maderas" {
		t.Fatalf("expected default profile maderas, got %q", cfg.Catalog.Profile)
	}
	if !cfg.Catalog.RequireNonEmpty {
		t.Fatalf("expected RequireNonEmpty to default to true")
	}
	if cfg.Quotation.ValidityDays != 30 {
		t.Fatalf("expected default validity 30, got %d", cfg.Quotation.ValidityDays)
	}
	if cfg.Quotation.MaxDiscountPercent != 50 {
		t.Fatalf("expected default max discount 50, got %v", cfg.Quotation.MaxDiscountPercent)
	}
	if cfg.Session.Store != SessionStoreMemory || cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 200 {
		t.Fatalf("unexpected search config %+v", cfg.Search)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.HTTP.RateLimitWindow != time.Minute || cfg.HTTP.RateLimitPerIP != 30 {
		t.Fatalf("unexpected rate limit config %+v", cfg.HTTP)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoadEnv_SkipsCrossFieldChecks(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCatalogPath, "")
	t.Setenv(EnvDBDSN, "postgres://localhost/quotes")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://localhost/quotes" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_FileSourceRequiresPath(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCatalogPath, "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing catalog path to return an error")
	}
}

func TestLoad_DBSourceBuildsLegacyDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCatalogSource, SourceDB)
	t.Setenv(EnvDBHost, "localhost")
	t.Setenv(EnvDBUser, "quote")
	t.Setenv(EnvDBName, "catalog")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	want := "postgres://quote@localhost:5432/catalog?sslmode=disable"
	if cfg.DB.DSN != want {
		t.Fatalf("expected dsn %q, got %q", want, cfg.DB.DSN)
	}
}

func TestLoad_DBSourceWithoutDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCatalogSource, SourceDB)

	if _, err := Load(); err == nil {
		t.Fatal("expected db source without dsn to fail")
	}
}

func TestLoad_RedisSessionsRequireURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionStore, SessionStoreRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis session store without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with redis url: %v", err)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvCatalogSource, SourceXLSX)
	t.Setenv(EnvCatalogPath, "testdata/lista.xlsx")
	t.Setenv(EnvSessionStore, SessionStoreMemory)
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvRedisURL, "")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestQuotationTermList(t *testing.T) {
	q := QuotationConfig{Terms: " Precios sujetos a cambio | | Entrega en 3 días "}
	got := q.TermList()
	if len(got) != 2 || got[0] != "Precios sujetos a cambio" || got[1] != "Entrega en 3 días" {
		t.Fatalf("unexpected terms %#v", got)
	}
	if len(QuotationConfig{}.TermList()) != 0 {
		t.Fatalf("expected no terms when unset")
	}
	sigs := QuotationConfig{Signatures: "Vendedor|Cliente"}.SignatureList()
	if len(sigs) != 2 || sigs[1] != "Cliente" {
		t.Fatalf("unexpected signatures %#v", sigs)
	}
}

func TestCatalogName(t *testing.T) {
	if got := (CatalogConfig{Profile: "maderas"}).CatalogName(); got != "maderas" {
		t.Fatalf("expected profile fallback, got %q", got)
	}
	if got := (CatalogConfig{Profile: "maderas", Name: "lista-2024"}).CatalogName(); got != "lista-2024" {
		t.Fatalf("expected explicit name, got %q", got)
	}
}
