package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type fakeExpiryService struct {
	report *expiry.SweepReport
	err    error
	calls  int
}

func (f *fakeExpiryService) RunSweep(context.Context, int) (*expiry.SweepReport, error) {
	f.calls++
	return f.report, f.err
}

func (f *fakeExpiryService) List(context.Context, uuid.UUID, bool) ([]models.ExpiryTracker, error) {
	return nil, nil
}

func (f *fakeExpiryService) ResolveTx(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeNotificationService struct {
	olderThan time.Duration
	deleted   int64
	err       error
}

func (f *fakeNotificationService) Notify(context.Context, notifications.NotifyInput) {}
func (f *fakeNotificationService) Email(context.Context, string, string, string)     {}

func (f *fakeNotificationService) List(context.Context, uuid.UUID, bool) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationService) MarkRead(context.Context, uuid.UUID) error { return nil }

func (f *fakeNotificationService) CleanupRead(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestExpirySweepJobRunsService(t *testing.T) {
	fake := &fakeExpiryService{report: &expiry.SweepReport{Scanned: 3, Tracked: 3}}
	job, err := NewExpirySweepJob(ExpirySweepJobParams{
		Logger:        testLogger(),
		Expiries:      fake,
		ThresholdDays: 14,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("sweep ran %d times", fake.calls)
	}
}

func TestExpirySweepJobPropagatesFailure(t *testing.T) {
	fake := &fakeExpiryService{err: errors.New("db down")}
	job, err := NewExpirySweepJob(ExpirySweepJobParams{Logger: testLogger(), Expiries: fake})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected failure to propagate")
	}
}

func TestNotificationCleanupJobAppliesRetention(t *testing.T) {
	fake := &fakeNotificationService{deleted: 12}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: fake,
		Retention:     7,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fake.olderThan != 7*24*time.Hour {
		t.Fatalf("unexpected retention window: %s", fake.olderThan)
	}
}
