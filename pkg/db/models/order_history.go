package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// OrderHistory records one status transition. PreviousStatus comes from the
// latest prior history row, or the order's own status when none exists.
type OrderHistory struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	PreviousStatus enums.OrderStatus `gorm:"column:previous_status;type:text;not null"`
	CurrentStatus  enums.OrderStatus `gorm:"column:current_status;type:text;not null"`
	ActorID        uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	Notes          string            `gorm:"column:notes"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the singular table name used by the schema.
func (OrderHistory) TableName() string { return "order_history" }
