// Package bootstrap wires the quoting service from configuration for the
// commands under cmd/.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/quoting"
	"github.com/angelmondragon/quotecatalog/internal/render"
	"github.com/angelmondragon/quotecatalog/internal/render/html"
	"github.com/angelmondragon/quotecatalog/internal/render/pdf"
	"github.com/angelmondragon/quotecatalog/internal/render/xlsx"
	"github.com/angelmondragon/quotecatalog/internal/session"
	"github.com/angelmondragon/quotecatalog/internal/sources"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/db"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
	"github.com/angelmondragon/quotecatalog/pkg/metrics"
	"github.com/angelmondragon/quotecatalog/pkg/migrate"
	"github.com/angelmondragon/quotecatalog/pkg/redis"
)

// Resources are the connections opened while wiring. The service closes
// them on Close; they are exposed for health checks and rate limiting.
type Resources struct {
	DB     *db.Client
	Redis  *redis.Client
	Memory *session.MemoryStore
}

func (r *Resources) closers() []io.Closer {
	var out []io.Closer
	if r.DB != nil {
		out = append(out, r.DB)
	}
	if r.Redis != nil {
		out = append(out, r.Redis)
	}
	return out
}

// Close releases whatever was opened. Only needed when NewService failed
// after opening a connection.
func (r *Resources) Close() error {
	var err error
	for _, c := range r.closers() {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// ResolveProfile picks the configured column profile, looking at the
// profiles file first when one is set.
func ResolveProfile(cfg config.CatalogConfig) (catalog.Profile, error) {
	var extra []catalog.Profile
	if path := strings.TrimSpace(cfg.ProfilesFile); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return catalog.Profile{}, fmt.Errorf("open profiles file: %w", err)
		}
		defer f.Close()
		if extra, err = catalog.LoadProfiles(f); err != nil {
			return catalog.Profile{}, fmt.Errorf("profiles file %s: %w", path, err)
		}
	}
	profile, ok := catalog.LookupProfile(cfg.Profile, extra...)
	if !ok {
		return catalog.Profile{}, fmt.Errorf("unknown catalog profile %q", cfg.Profile)
	}
	return profile, nil
}

// LoadLogo reads the company logo. A blank path means no logo.
func LoadLogo(path string) (*document.Image, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "jpeg" {
		format = "jpg"
	}
	return &document.Image{Name: filepath.Base(path), Format: format, Data: data}, nil
}

// Renderers registers every document format.
func Renderers() *render.Registry {
	reg := render.NewRegistry()
	reg.Register(render.FormatPDF, pdf.New())
	reg.Register(render.FormatXLSX, xlsx.New())
	reg.Register(render.FormatHTML, html.New())
	reg.Register(render.FormatJSON, render.JSON{})
	return reg
}

func Company(cfg config.CompanyConfig) document.CompanyProfile {
	return document.CompanyProfile{
		Name:    cfg.Name,
		TaxID:   cfg.TaxID,
		Address: cfg.Address,
		Phone:   cfg.Phone,
		City:    cfg.City,
		Email:   cfg.Email,
	}
}

// Calculator applies the quotation settings.
func Calculator(cfg config.QuotationConfig) *quotation.Calculator {
	return quotation.NewCalculator(quotation.CalculatorOptions{
		IDSuffix:            cfg.IDSuffix,
		DefaultTerms:        cfg.TermList(),
		DefaultValidityDays: cfg.ValidityDays,
	})
}

// Source opens the configured price list. Database sources reuse client.
func Source(cfg config.CatalogConfig, client *db.Client) (sources.Source, error) {
	switch cfg.Source {
	case config.SourceDB:
		src, err := sources.NewSQL(client, cfg.CatalogName())
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceXLSX, config.SourceCSV:
		return sources.File{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	}
	return nil, fmt.Errorf("unsupported catalog source %q", cfg.Source)
}

// NewService opens the configured dependencies and builds the quoting
// service. The catalog is not loaded; call Reload.
func NewService(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*quoting.Service, *Resources, error) {
	res := &Resources{}
	svc, err := newService(ctx, cfg, logg, reg, res)
	if err != nil {
		return nil, nil, multierr.Append(err, res.Close())
	}
	return svc, res, nil
}

func newService(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, res *Resources) (*quoting.Service, error) {
	profile, err := ResolveProfile(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	if cfg.Catalog.Source == config.SourceDB || cfg.FeatureFlags.AutoMigrate {
		if res.DB, err = db.New(ctx, cfg.DB, logg); err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, res.DB); err != nil {
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
	}

	source, err := Source(cfg.Catalog, res.DB)
	if err != nil {
		return nil, err
	}

	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		if res.Redis, err = redis.New(ctx, cfg.Redis, logg); err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		store = session.NewRedisStore(res.Redis, cfg.Session.TTL)
	default:
		res.Memory = session.NewMemoryStore(cfg.Session.TTL)
		store = res.Memory
	}

	logo, err := LoadLogo(cfg.Company.LogoPath)
	if err != nil {
		// a broken logo falls back to the text badge
		logg.Warn(logg.WithField(ctx, "logo_path", cfg.Company.LogoPath), err.Error())
		logo = nil
	}

	return quoting.NewService(quoting.ServiceParams{
		Logger:          logg,
		Source:          source,
		Profile:         profile,
		RequireNonEmpty: cfg.Catalog.RequireNonEmpty,
		Sessions:        store,
		Calculator:      Calculator(cfg.Quotation),
		Renderers:       Renderers(),
		Metrics:         metrics.NewQuoting(reg),
		Company:         Company(cfg.Company),
		Logo:            logo,
		Signatures:      cfg.Quotation.SignatureList(),
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxLimit:        cfg.Search.MaxLimit,
		MaxDiscount:     decimal.NewFromFloat(cfg.Quotation.MaxDiscountPercent),
		Closers:         res.closers(),
		Now:             time.Now,
	})
}
