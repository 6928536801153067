package quoting

import (
	"context"
	"time"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

// Reload reads the source, builds a new catalog and swaps it in. On failure
// the previous catalog stays active.
func (s *Service) Reload(ctx context.Context) (catalog.Stats, error) {
	ctx = s.logg.WithCatalog(ctx, s.profile.Name)
	ctx = s.logg.WithField(ctx, "source", s.source.Name())
	start := time.Now()

	next, err := s.load(ctx)
	duration := time.Since(start)
	s.metrics.ObserveReload(s.source.Name(), duration, err)
	ctx = s.logg.WithField(ctx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "catalog.reload.failed", err)
		return catalog.Stats{}, err
	}

	s.holder.Swap(next)
	stats := next.Stats()
	s.metrics.SetCatalogSize(s.profile.Name, stats.Products, stats.Dropped)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"rows":       stats.Rows,
		"products":   stats.Products,
		"dropped":    stats.Dropped,
		"duplicates": stats.Duplicates,
	})
	if stats.Dropped > 0 || stats.Duplicates > 0 {
		s.logg.Warn(ctx, "catalog.reload.rows_skipped")
	}
	s.logg.Info(ctx, "catalog.reload.completed")
	return stats, nil
}

func (s *Service) load(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.source.Rows(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeCatalogUnavailable, err, "read price list")
	}
	return catalog.Build(rows, s.profile, catalog.BuildOptions{
		RequireNonEmpty: s.requireNonEmpty,
		Now:             s.now,
	})
}

// RunReloader reloads the catalog every interval until ctx is canceled.
// Failed reloads are logged and keep the previous catalog.
func (s *Service) RunReloader(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultReloadInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "catalog reloader stopped")
			return ctx.Err()
		case <-ticker.C:
			_, _ = s.Reload(ctx)
		}
	}
}
