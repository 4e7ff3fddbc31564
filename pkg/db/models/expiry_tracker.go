package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// ExpiryTracker is the sweep-maintained view of a batch approaching expiry.
// One row per (batch, owner); the sweep upserts so re-runs never duplicate.
type ExpiryTracker struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StockInventoryID uuid.UUID          `gorm:"column:stock_inventory_id;type:uuid;not null;uniqueIndex:idx_expiry_tracker_key"`
	OwnerID          uuid.UUID          `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_expiry_tracker_key"`
	BatchNumber      string             `gorm:"column:batch_number;not null;uniqueIndex:idx_expiry_tracker_key"`
	RemainingDays    int                `gorm:"column:remaining_days;not null"`
	Status           enums.ExpiryStatus `gorm:"column:status;type:text;not null"`
	CanRequestReturn bool               `gorm:"column:can_request_return;not null;default:false"`
	IsResolved       bool               `gorm:"column:is_resolved;not null;default:false"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
