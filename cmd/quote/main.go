// Command quote searches the configured price list and writes quotation
// documents from the terminal.
//
//	quote search -q "tabla pino" -variant cuiva
//	quote build -client "Obras SAS" -item TAB001:10 -item VIG100:2:cuiva -format xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotecatalog/internal/bootstrap"
	"github.com/angelmondragon/quotecatalog/internal/pricing"
	"github.com/angelmondragon/quotecatalog/internal/quotation"
	"github.com/angelmondragon/quotecatalog/internal/quoting"
	"github.com/angelmondragon/quotecatalog/internal/search"
	"github.com/angelmondragon/quotecatalog/pkg/config"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	_ = godotenv.Load()

	logg := logger.New(logger.Options{ServiceName: "quote", Format: logger.FormatConsole})
	cfg, err := config.LoadEnv()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "quote",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.FormatConsole,
		Output:      os.Stderr,
	})

	switch os.Args[1] {
	case "search":
		err = runSearch(cfg, logg, os.Args[2:])
	case "build":
		err = runBuild(cfg, logg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logg.Error(context.Background(), "quote "+os.Args[1]+" failed", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: quote search|build [flags]")
}

// catalogFlags lets every subcommand point at a different price list.
func catalogFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Catalog.Path, "file", cfg.Catalog.Path, "price list file")
	fs.StringVar(&cfg.Catalog.Sheet, "sheet", cfg.Catalog.Sheet, "worksheet name")
	fs.StringVar(&cfg.Catalog.Profile, "profile", cfg.Catalog.Profile, "column profile")
}

func open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*quoting.Service, error) {
	if cfg.Catalog.Source != config.SourceDB {
		source, err := sourceForPath(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		cfg.Catalog.Source = source
	}
	// one-shot runs keep their cart in memory
	cfg.Session.Store = config.SessionStoreMemory

	svc, _, err := bootstrap.NewService(ctx, cfg, logg, nil)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Reload(ctx); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func runSearch(cfg *config.Config, logg *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	catalogFlags(fs, cfg)
	term := fs.String("q", "", "search term")
	variant := fs.String("variant", "", "price variant")
	limit := fs.Int("limit", cfg.Search.DefaultLimit, "maximum results")
	category := fs.String("category", "", "reference prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	svc, err := open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Search(ctx, search.Query{
		Term:           *term,
		VariantKey:     *variant,
		Limit:          *limit,
		CategoryPrefix: *category,
	})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logg.Warn(logg.WithField(ctx, "code", w.Code), w.Message)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "REFERENCIA\tDESCRIPCION\t%s\n", res.VariantKey)
	for _, item := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Product.Reference, item.Product.Description, item.Price)
	}
	return tw.Flush()
}

func runBuild(cfg *config.Config, logg *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	catalogFlags(fs, cfg)
	var items itemList
	fs.Var(&items, "item", "REFERENCE:QUANTITY[:VARIANT], repeatable")
	client := fs.String("client", "", "client name")
	clientTaxID := fs.String("client-tax-id", "", "client tax id")
	discount := fs.String("discount", "0", "discount percent")
	validity := fs.Int("validity", 0, "validity in days; 0 uses the configured default")
	variant := fs.String("variant", "", "price every line with this variant")
	format := fs.String("format", "pdf", "document format")
	outDir := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("at least one -item is required")
	}
	pct, err := decimal.NewFromString(*discount)
	if err != nil {
		return fmt.Errorf("invalid -discount %q: %w", *discount, err)
	}

	ctx := context.Background()
	svc, err := open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer svc.Close()

	sess, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := svc.AddToCart(ctx, sess.ID, it.Reference, it.Variant, it.Quantity); err != nil {
			return fmt.Errorf("add %s: %w", it.Reference, err)
		}
	}

	q, err := svc.GenerateQuotation(ctx, sess.ID, quoting.QuoteRequest{
		Client:          quotation.ClientInfo{Name: *client, TaxID: *clientTaxID},
		DiscountPercent: pct,
		ValidityDays:    *validity,
		Variant:         *variant,
	})
	if err != nil {
		return err
	}
	doc, err := svc.RenderLatest(ctx, sess.ID, *format, nil)
	if err != nil {
		return err
	}

	path := filepath.Join(*outDir, doc.FileName)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"quotation_id": q.ID,
		"total":        pricing.Format(q.Total),
		"path":         path,
	}), "quotation written")
	return nil
}
