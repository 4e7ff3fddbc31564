package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale credits the seller once an order is delivered. The unique order id
// makes duplicate delivery events a no-op.
type Sale struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	SellerID   uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	BuyerID    uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
