package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/quotecatalog/api"
	"github.com/angelmondragon/quotecatalog/api/controllers"
	"github.com/angelmondragon/quotecatalog/api/middleware"
	"github.com/angelmondragon/quotecatalog/api/routes"
	"github.com/angelmondragon/quotecatalog/internal/bootstrap"
	"github.com/angelmondragon/quotecatalog/internal/quoting"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/env"
	"github.com/angelmondragon/quotecatalog/pkg/instance"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, res, err := bootstrap.NewService(ctx, cfg, logg, registry)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap quoting service", err)
		os.Exit(1)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Error(context.Background(), "error closing quoting service", err)
		}
	}()

	if _, err := svc.Reload(ctx); err != nil {
		logg.Error(ctx, "initial catalog load failed", err)
		stop()
		_ = svc.Close()
		os.Exit(1)
	}

	if cfg.Catalog.ReloadInterval > 0 {
		go func() { _ = svc.RunReloader(ctx, cfg.Catalog.ReloadInterval) }()
	}
	if res.Memory != nil {
		go res.Memory.RunSweeper(ctx, sessionSweepInterval, logg)
	}

	var rateStore middleware.RateLimiterStore
	if res.Redis != nil {
		rateStore = res.Redis
	}

	addr := ":" + env.Port(cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"catalog":  cfg.Catalog.CatalogName(),
		"source":   cfg.Catalog.Source,
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(cfg, logg, svc, readinessChecks(svc, res), rateStore, registry)
	server := api.NewServer(cfg, addr, handler)
	if err := api.Serve(ctx, server, cfg.HTTP.ShutdownTimeout, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func readinessChecks(svc *quoting.Service, res *bootstrap.Resources) map[string]controllers.ReadinessCheck {
	checks := map[string]controllers.ReadinessCheck{
		"catalog": func(context.Context) error {
			if svc.Catalog() == nil {
				return errors.New("catalog not loaded")
			}
			return nil
		},
	}
	if res.DB != nil {
		checks["database"] = res.DB.Ping
	}
	if res.Redis != nil {
		checks["redis"] = res.Redis.Ping
	}
	return checks
}
