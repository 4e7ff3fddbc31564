package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned before insert so the models behave the same on Postgres
// and the sqlite test databases.

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Wallet) BeforeCreate(*gorm.DB) error                { assignID(&m.ID); return nil }
func (m *WalletTransaction) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
func (m *StockInventory) BeforeCreate(*gorm.DB) error        { assignID(&m.ID); return nil }
func (m *StockInventoryHistory) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *ExpiryTracker) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error                 { assignID(&m.ID); return nil }
func (m *OrderItem) BeforeCreate(*gorm.DB) error             { assignID(&m.ID); return nil }
func (m *OrderHistory) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *OrderRequest) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *StockTransferRequest) BeforeCreate(*gorm.DB) error  { assignID(&m.ID); return nil }
func (m *Sale) BeforeCreate(*gorm.DB) error                  { assignID(&m.ID); return nil }
func (m *User) BeforeCreate(*gorm.DB) error                  { assignID(&m.ID); return nil }
func (m *Product) BeforeCreate(*gorm.DB) error               { assignID(&m.ID); return nil }
func (m *ProductVariant) BeforeCreate(*gorm.DB) error        { assignID(&m.ID); return nil }
func (m *VariantPrice) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *BulkPrice) BeforeCreate(*gorm.DB) error             { assignID(&m.ID); return nil }
func (m *StockistAssignment) BeforeCreate(*gorm.DB) error    { assignID(&m.ID); return nil }
func (m *Notification) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
