package models

import (
	"time"

	"github.com/google/uuid"
)

// StockInventory is one manufactured batch of a product variant held by one
// owner. Quantity moves only through the stock service, which pairs every
// change with a history row. Exhausted expired batches are retired in place,
// never deleted.
type StockInventory struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_batch_key"`
	VariantID       *uuid.UUID `gorm:"column:variant_id;type:uuid;uniqueIndex:idx_stock_batch_key"`
	OwnerID         uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_stock_batch_key"`
	BatchNumber     string     `gorm:"column:batch_number;not null;uniqueIndex:idx_stock_batch_key"`
	TotalQuantity   int        `gorm:"column:total_quantity;not null;default:0"`
	ManufactureDate time.Time  `gorm:"column:manufacture_date;not null"`
	ExpiryDate      time.Time  `gorm:"column:expiry_date;not null"`
	IsExpired       bool       `gorm:"column:is_expired;not null;default:false"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table name used by the schema.
func (StockInventory) TableName() string { return "stock_inventory" }
