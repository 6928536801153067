package quoting

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/quotecatalog/internal/search"
	"github.com/angelmondragon/quotecatalog/pkg/metrics"
)

// Search runs q against the active catalog. The limit defaults to the
// configured default and is capped at the configured maximum.
func (s *Service) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if q.Limit <= 0 {
		q.Limit = s.defaultLimit
	}
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}

	start := time.Now()
	res, err := search.Search(s.Catalog(), q)
	result := metrics.ResultSuccess
	var se *search.SearchError
	switch {
	case errors.As(err, &se):
		result = metrics.ResultEmpty
	case err != nil:
		result = metrics.ResultFailure
	}
	s.metrics.ObserveSearch(result, time.Since(start))
	if err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		wctx := s.logg.WithFields(ctx, map[string]any{"warning": w.Code, "term": res.Term, "variant": res.VariantKey})
		s.logg.Warn(wctx, w.Message)
	}
	return res, nil
}

// Categories lists the category prefixes of the active catalog.
func (s *Service) Categories() []string {
	return s.Catalog().Categories()
}
