package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/quotecatalog/internal/bootstrap"
	"github.com/angelmondragon/quotecatalog/internal/sources"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/db"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
	"github.com/angelmondragon/quotecatalog/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-import"})

	_ = godotenv.Load()

	file := flag.String("file", "", "price list to import (.xlsx or .csv)")
	sheet := flag.String("sheet", "", "worksheet to read; defaults to the first one")
	profileName := flag.String("profile", "", "column profile; defaults to QUOTECATALOG_CATALOG_PROFILE")
	name := flag.String("catalog", "", "catalog key in price_list_rows; defaults to the profile name")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	migrateUp := flag.Bool("migrate", false, "run goose up before importing")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}

	cfg, err := config.LoadEnv()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "catalog-import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if *profileName != "" {
		cfg.Catalog.Profile = *profileName
	}
	if *name != "" {
		cfg.Catalog.Name = *name
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"file":    *file,
		"catalog": cfg.Catalog.CatalogName(),
		"dry_run": *dryRun,
	})

	profile, err := bootstrap.ResolveProfile(cfg.Catalog)
	requireResource(ctx, logg, "catalog profile", err)

	requireResource(ctx, logg, "database config", cfg.DB.EnsureDSN())
	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *migrateUp {
		sqlDB, err := dbClient.DB().DB()
		requireResource(ctx, logg, "sql database", err)
		err = migrate.Run(ctx, sqlDB, migrate.DialectFor(cfg.DB), migrate.EmbeddedDir, "up")
		requireResource(ctx, logg, "migrations", err)
	}

	dst, err := sources.NewSQL(dbClient, cfg.Catalog.CatalogName())
	requireResource(ctx, logg, "catalog table", err)

	res, err := bootstrap.ImportCatalog(ctx, sources.File{Path: *file, Sheet: *sheet}, dst, profile, *dryRun)
	if err != nil {
		logg.Error(ctx, "catalog import failed", err)
		dbClient.Close()
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"rows":       res.Stats.Rows,
		"products":   res.Stats.Products,
		"dropped":    res.Stats.Dropped,
		"duplicates": res.Stats.Duplicates,
		"written":    res.Written,
	}), "catalog import finished")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
