// Package quoting is the application service behind the API and the CLI. It
// owns the active catalog and drives search, carts, quotations and documents.
package quoting

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/document"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/render"
	"github.com/angelmondragon/quotecatalog/internal/session"
	"github.com/angelmondragon/quotecatalog/internal/sources"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
	"github.com/angelmondragon/quotecatalog/pkg/metrics"
)

const defaultReloadInterval = time.Hour

// ServiceParams configure the quoting service.
type ServiceParams struct {
	Logger          *logger.Logger
	Source          sources.Source
	Profile         catalog.Profile
	RequireNonEmpty bool
	Sessions        session.Store
	Calculator      *quotation.Calculator
	Renderers       *render.Registry
	Metrics         *metrics.Quoting

	Company    document.CompanyProfile
	Labels     document.Labels
	Logo       *document.Image
	Signatures []string

	DefaultLimit int
	MaxLimit     int
	MaxDiscount  decimal.Decimal

	// Closers are released by Close, e.g. database and redis clients.
	Closers []io.Closer
	Now     func() time.Time
}

type Service struct {
	logg            *logger.Logger
	source          sources.Source
	profile         catalog.Profile
	requireNonEmpty bool
	holder          *catalog.Holder
	sessions        session.Store
	calculator      *quotation.Calculator
	renderers       *render.Registry
	metrics         *metrics.Quoting

	company    document.CompanyProfile
	labels     document.Labels
	logo       *document.Image
	signatures []string

	defaultLimit int
	maxLimit     int
	maxDiscount  decimal.Decimal

	closers []io.Closer
	now     func() time.Time
}

// NewService validates the wiring. The catalog stays empty until Reload.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("price list source required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if err := params.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("catalog profile %q: %w", params.Profile.Name, err)
	}
	calc := params.Calculator
	if calc == nil {
		calc = quotation.NewCalculator(quotation.CalculatorOptions{Now: params.Now})
	}
	renderers := params.Renderers
	if renderers == nil {
		renderers = render.NewRegistry()
		renderers.Register(render.FormatJSON, render.JSON{})
	}
	maxLimit := params.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 200
	}
	maxDiscount := params.MaxDiscount
	if !maxDiscount.IsPositive() {
		maxDiscount = decimal.NewFromInt(quotation.DefaultMaxDiscount)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:            params.Logger,
		source:          params.Source,
		profile:         params.Profile,
		requireNonEmpty: params.RequireNonEmpty,
		holder:          catalog.NewHolder(nil),
		sessions:        params.Sessions,
		calculator:      calc,
		renderers:       renderers,
		metrics:         params.Metrics,
		company:         params.Company,
		labels:          params.Labels,
		logo:            params.Logo,
		signatures:      append([]string(nil), params.Signatures...),
		defaultLimit:    params.DefaultLimit,
		maxLimit:        maxLimit,
		maxDiscount:     maxDiscount,
		closers:         params.Closers,
		now:             now,
	}, nil
}

// Catalog returns the active catalog snapshot; nil before the first load.
func (s *Service) Catalog() *catalog.Catalog {
	return s.holder.Load()
}

// Formats lists the document formats the service can render.
func (s *Service) Formats() []string {
	return s.renderers.Formats()
}

// Close releases every configured closer and reports all failures.
func (s *Service) Close() error {
	var err error
	for _, c := range s.closers {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
