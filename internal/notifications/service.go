package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/repo"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// Service persists in-app notifications and hands emails to the mailer.
// Both paths are best-effort: failures are logged and swallowed so a missed
// notification can never fail the business operation that triggered it.
type Service interface {
	Notify(ctx context.Context, input NotifyInput)
	Email(ctx context.Context, to, subject, body string)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	// CleanupRead deletes read notifications older than the retention window.
	CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NotifyInput is one in-app notification.
type NotifyInput struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    enums.NotificationType
	URL     string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type service struct {
	base   repo.Base
	mailer Mailer
	logg   *logger.Logger
}

// NewService wires a notification service.
func NewService(db *gorm.DB, mailer Mailer, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{base: repo.NewBase(db), mailer: mailer, logg: logg}, nil
}

func (s *service) Notify(ctx context.Context, input NotifyInput) {
	if input.UserID == uuid.Nil || input.Title == "" {
		s.logg.Warn(ctx, "dropping notification with missing user or title")
		return
	}
	notifType := input.Type
	if notifType == "" {
		notifType = enums.NotificationTypeSystem
	}

	row := &models.Notification{
		UserID:  input.UserID,
		Title:   input.Title,
		Message: input.Message,
		Type:    notifType,
		URL:     input.URL,
	}
	if err := s.base.DB(ctx).Create(row).Error; err != nil {
		s.logg.Error(ctx, "persisting notification failed", err)
	}
}

func (s *service) Email(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logg.Error(ctx, "sending email failed", err)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	q := s.base.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "notification id is required")
	}
	return s.base.DB(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_read", true).Error
}

func (s *service) CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := s.base.DB(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
