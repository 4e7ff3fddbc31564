package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// StockInventoryHistory is the append-only audit of every batch adjustment.
// Rows chain: old_quantity of row n equals new_quantity of row n-1, and the
// sum of deltas equals the batch's current total quantity.
type StockInventoryHistory struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StockInventoryID uuid.UUID         `gorm:"column:stock_inventory_id;type:uuid;not null;index"`
	OwnerID          uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	OldQuantity      int               `gorm:"column:old_quantity;not null"`
	Delta            int               `gorm:"column:delta;not null"`
	NewQuantity      int               `gorm:"column:new_quantity;not null"`
	Action           enums.StockAction `gorm:"column:action;type:text;not null"`
	ReferenceID      string            `gorm:"column:reference_id"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the singular table name used by the schema.
func (StockInventoryHistory) TableName() string { return "stock_inventory_history" }
