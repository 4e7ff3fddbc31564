package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// WalletTransaction is an immutable, append-only record of one balance
// movement. Refunds are compensating credits, never edits of prior rows.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey"`
	WalletID    uuid.UUID                     `gorm:"column:wallet_id;type:uuid;not null;index"`
	Type        enums.WalletTransactionType   `gorm:"column:type;type:text;not null"`
	Amount      decimal.Decimal               `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;type:text;not null"`
	Description string                        `gorm:"column:description"`
	OrderID     *uuid.UUID                    `gorm:"column:order_id;type:uuid;index"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
