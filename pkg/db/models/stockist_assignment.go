package models

import (
	"time"

	"github.com/google/uuid"
)

// StockistAssignment pins a reseller to a stockist for seller resolution.
type StockistAssignment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ResellerID uuid.UUID `gorm:"column:reseller_id;type:uuid;not null;uniqueIndex"`
	StockistID uuid.UUID `gorm:"column:stockist_id;type:uuid;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
