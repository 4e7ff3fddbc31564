package notifications

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type captureMailer struct {
	sent []string
	err  error
}

func (m *captureMailer) Send(_ context.Context, to, subject, _ string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return m.err
}

func TestNotifyPersistsRow(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	svc.Notify(ctx, NotifyInput{
		UserID:  userID,
		Title:   "Order accepted",
		Message: "Your order was accepted",
		Type:    enums.NotificationTypeOrder,
	})

	rows, err := svc.List(ctx, userID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Order accepted" {
		t.Fatalf("unexpected notifications: %+v", rows)
	}

	// Invalid input is dropped silently, never an error.
	svc.Notify(ctx, NotifyInput{Title: "no user"})
	rows, err = svc.List(ctx, userID, true)
	if err != nil {
		t.Fatalf("list after drop: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("dropped notification was persisted: %d", len(rows))
	}
}

func TestMarkReadAndCleanup(t *testing.T) {
	t.Parallel()

	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	svc.Notify(ctx, NotifyInput{UserID: userID, Title: "old", Message: "x"})

	rows, err := svc.List(ctx, userID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := svc.MarkRead(ctx, rows[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	// Backdate the row so the retention cutoff catches it.
	aged := time.Now().UTC().Add(-60 * 24 * time.Hour)
	if err := conn.Model(&models.Notification{}).
		Where("id = ?", rows[0].ID).
		Update("created_at", aged).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	deleted, err := svc.CleanupRead(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
}

func TestEmailDelegatesToMailer(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	svc.Email(ctx, "buyer@example.com", "Order placed", "details")
	svc.Email(ctx, "", "skipped", "no recipient")

	if len(mailer.sent) != 1 || mailer.sent[0] != "buyer@example.com|Order placed" {
		t.Fatalf("unexpected mailer calls: %v", mailer.sent)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB, *captureMailer) {
	t.Helper()
	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mailer := &captureMailer{}
	logg := logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
	svc, err := NewService(conn, mailer, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn, mailer
}
