package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// OrderRequest is a reseller's ask routed to a stockist. When the stockist
// cannot cover the quantity, TransferDueAt starts the auto-transfer clock;
// replenishing stock before the deadline clears it.
type OrderRequest struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	ResellerID    uuid.UUID                `gorm:"column:reseller_id;type:uuid;not null;index"`
	TargetUserID  uuid.UUID                `gorm:"column:target_user_id;type:uuid;not null;index"`
	ProductID     uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	VariantID     *uuid.UUID               `gorm:"column:variant_id;type:uuid"`
	Quantity      int                      `gorm:"column:quantity;not null"`
	Status        enums.OrderRequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TransferDueAt *time.Time               `gorm:"column:transfer_due_at;index"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
