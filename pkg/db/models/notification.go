package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// Notification is a best-effort in-app message; writing one never blocks or
// fails the operation that triggered it.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	URL       string                 `gorm:"column:url"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
