package bootstrap

import (
	"context"
	"fmt"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/internal/sources"
)

// ImportResult reports what an import validated and wrote.
type ImportResult struct {
	Stats   catalog.Stats
	Written int
}

// ImportCatalog copies the rows of src into dst after checking that they
// build into a catalog under profile. With dryRun nothing is written.
func ImportCatalog(ctx context.Context, src sources.Source, dst *sources.SQL, profile catalog.Profile, dryRun bool) (ImportResult, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	built, err := catalog.Build(rows, profile, catalog.BuildOptions{RequireNonEmpty: true})
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Stats: built.Stats()}
	if dryRun {
		return res, nil
	}
	if res.Written, err = dst.Replace(ctx, rows); err != nil {
		return res, fmt.Errorf("write %s: %w", dst.Name(), err)
	}
	return res, nil
}
