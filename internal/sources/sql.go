package sources

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	"github.com/angelmondragon/quotecatalog/pkg/db"
	"github.com/angelmondragon/quotecatalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

const insertBatchSize = 500

// SQL reads and writes the rows of one named price list in price_list_rows.
type SQL struct {
	client  *db.Client
	catalog string
}

func NewSQL(client *db.Client, catalogName string) (*SQL, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if catalogName == "" {
		return nil, fmt.Errorf("catalog name required")
	}
	return &SQL{client: client, catalog: catalogName}, nil
}

func (s *SQL) Name() string { return "db:" + s.catalog }

// Rows returns the stored rows in their original order.
func (s *SQL) Rows(ctx context.Context) ([]catalog.RawRow, error) {
	var records []models.PriceListRow
	err := s.client.DB().WithContext(ctx).
		Where("catalog = ?", s.catalog).
		Order("position ASC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query price list rows")
	}

	rows := make([]catalog.RawRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, catalog.RawRow(r.Cells))
	}
	return rows, nil
}

// Replace swaps the stored price list for rows in a single transaction.
func (s *SQL) Replace(ctx context.Context, rows []catalog.RawRow) (int, error) {
	records := make([]models.PriceListRow, 0, len(rows))
	for i, row := range rows {
		records = append(records, models.PriceListRow{
			Catalog:  s.catalog,
			Position: i,
			Cells:    map[string]any(row),
		})
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("catalog = ?", s.catalog).Delete(&models.PriceListRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, insertBatchSize).Error
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "price list was modified concurrently")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace price list rows")
	}
	return len(records), nil
}
