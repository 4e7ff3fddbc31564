package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// StockTransferRequest is a return/replacement raised against a batch. The
// two boolean flags guarantee stock is compensated exactly once no matter
// how many times a terminal transition is delivered.
type StockTransferRequest struct {
	ID                    uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	RequestID             string                      `gorm:"column:request_id;not null;uniqueIndex"`
	Type                  enums.TransferRequestType   `gorm:"column:type;type:text;not null"`
	Status                enums.TransferRequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RaisedByID            uuid.UUID                   `gorm:"column:raised_by_id;type:uuid;not null;index"`
	RaisedToID            uuid.UUID                   `gorm:"column:raised_to_id;type:uuid;not null;index"`
	ProductID             uuid.UUID                   `gorm:"column:product_id;type:uuid;not null"`
	VariantID             *uuid.UUID                  `gorm:"column:variant_id;type:uuid"`
	Quantity              int                         `gorm:"column:quantity;not null"`
	BatchNumber           string                      `gorm:"column:batch_number;not null"`
	NewBatchNumber        *string                     `gorm:"column:new_batch_number"`
	OriginalStockDeducted bool                        `gorm:"column:original_stock_deducted;not null;default:false"`
	ReplacementStockAdded bool                        `gorm:"column:replacement_stock_added;not null;default:false"`
	IsResolved            bool                        `gorm:"column:is_resolved;not null;default:false"`
	AdminNotes            string                      `gorm:"column:admin_notes"`
	CompletedAt           *time.Time                  `gorm:"column:completed_at"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
