package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceListRow stores one raw price-list record. Cells keeps the original
// column names so any catalog profile can be applied when reading it back.
type PriceListRow struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Catalog   string         `gorm:"column:catalog;not null;uniqueIndex:price_list_rows_catalog_position_key,priority:1"`
	Position  int            `gorm:"column:position;not null;uniqueIndex:price_list_rows_catalog_position_key,priority:2"`
	Cells     map[string]any `gorm:"column:cells;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (PriceListRow) TableName() string { return "price_list_rows" }

func (r *PriceListRow) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
