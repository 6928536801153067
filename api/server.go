package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

// NewServer returns the HTTP server that cmd/api runs.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
// A clean shutdown returns nil.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, logg *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
