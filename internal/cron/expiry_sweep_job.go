package cron

import (
	"context"
	"fmt"

	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

const defaultExpiryThresholdDays = 30

// ExpirySweepJobParams configure the expiry sweep job.
type ExpirySweepJobParams struct {
	Logger        *logger.Logger
	Expiries      expiry.Service
	ThresholdDays int
}

// NewExpirySweepJob builds the job that refreshes expiry trackers and retires
// expired batches.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expiries == nil {
		return nil, fmt.Errorf("expiry service required")
	}
	threshold := params.ThresholdDays
	if threshold <= 0 {
		threshold = defaultExpiryThresholdDays
	}
	return &expirySweepJob{
		logg:      params.Logger,
		expiries:  params.Expiries,
		threshold: threshold,
	}, nil
}

type expirySweepJob struct {
	logg      *logger.Logger
	expiries  expiry.Service
	threshold int
}

func (j *expirySweepJob) Name() string { return "expiry-sweep" }

func (j *expirySweepJob) Run(ctx context.Context) error {
	report, err := j.expiries.RunSweep(ctx, j.threshold)
	if err != nil {
		return fmt.Errorf("expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"threshold_days": j.threshold,
		"scanned":        report.Scanned,
		"tracked":        report.Tracked,
		"expired":        report.Expired,
	})
	j.logg.Info(logCtx, "expiry sweep complete")
	return nil
}
