package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// Order is created atomically with its items and the wallet debit.
// TotalPrice is immutable after creation; cancellations compensate through
// the ledger rather than editing the order.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID    uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID   uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'new'"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
