package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one allocated slice of an order. Batch fields are a snapshot
// taken at allocation time, not a live reference; an order item keeps its
// batch linkage even after the batch itself is retired.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID       *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountPct     decimal.Decimal `gorm:"column:discount_pct;type:numeric(5,2);not null;default:0"`
	GSTPct          decimal.Decimal `gorm:"column:gst_pct;type:numeric(5,2);not null;default:0"`
	LineTotal       decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	BatchNumber     string          `gorm:"column:batch_number;not null"`
	ManufactureDate time.Time       `gorm:"column:manufacture_date"`
	ExpiryDate      time.Time       `gorm:"column:expiry_date"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
