package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// User is the read model the core consumes from the user directory.
// Account management, auth, and KYC live outside this service.
type User struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username          string     `gorm:"column:username;not null;uniqueIndex"`
	Email             string     `gorm:"column:email;not null"`
	Role              enums.Role `gorm:"column:role;type:text;not null"`
	IsDefaultStockist bool       `gorm:"column:is_default_stockist;not null;default:false"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
