package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// Product is the catalog read model; catalog CRUD lives outside this service.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant is one sellable variation of a product.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// VariantPrice is the role-specific flat price a seller charges for a variant.
type VariantPrice struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_variant_price_key"`
	SellerID    uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:idx_variant_price_key"`
	Role        enums.Role      `gorm:"column:role;type:text;not null;uniqueIndex:idx_variant_price_key"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPct decimal.Decimal `gorm:"column:discount_pct;type:numeric(5,2);not null;default:0"`
	GSTPct      decimal.Decimal `gorm:"column:gst_pct;type:numeric(5,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BulkPrice is a quantity-threshold override; the tier with the largest
// qualifying MaxQuantity wins.
type BulkPrice struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;index"`
	MaxQuantity int             `gorm:"column:max_quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPct decimal.Decimal `gorm:"column:discount_pct;type:numeric(5,2);not null;default:0"`
	GSTPct      decimal.Decimal `gorm:"column:gst_pct;type:numeric(5,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
