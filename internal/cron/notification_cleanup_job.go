package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

const notificationRetentionDays = 30

// NotificationCleanupJobParams configure the notification cleanup job.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notifications.Service
	Retention     int
}

// NewNotificationCleanupJob builds the job that deletes read notifications
// past the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		notifier:  params.Notifications,
		retention: retention,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	notifier  notifications.Service
	retention int
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	olderThan := time.Duration(j.retention) * 24 * time.Hour
	deleted, err := j.notifier.CleanupRead(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
