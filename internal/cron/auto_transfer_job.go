package cron

import (
	"context"
	"fmt"

	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// AutoTransferJobParams configure the auto-transfer sweep job.
type AutoTransferJobParams struct {
	Logger *logger.Logger
	Orders orders.Service
}

// NewAutoTransferJob builds the job that retargets stale order requests to
// the default stockist.
func NewAutoTransferJob(params AutoTransferJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &autoTransferJob{logg: params.Logger, orders: params.Orders}, nil
}

type autoTransferJob struct {
	logg   *logger.Logger
	orders orders.Service
}

func (j *autoTransferJob) Name() string { return "auto-transfer" }

func (j *autoTransferJob) Run(ctx context.Context) error {
	report, err := j.orders.RunAutoTransferSweep(ctx)
	if err != nil {
		return fmt.Errorf("auto-transfer sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":      report.Scanned,
		"retargeted":   report.Retargeted,
		"skipped_same": report.SkippedSame,
	})
	j.logg.Info(logCtx, "auto-transfer sweep complete")
	return nil
}
