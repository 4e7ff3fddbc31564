package expiry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// Service maintains expiry trackers for admin and vendor held batches
// approaching their expiry date. The sweep is idempotent: trackers upsert on
// the batch key and re-running only refreshes remaining days and status.
type Service interface {
	RunSweep(ctx context.Context, thresholdDays int) (*SweepReport, error)
	List(ctx context.Context, ownerID uuid.UUID, unresolvedOnly bool) ([]models.ExpiryTracker, error)
	// ResolveTx marks the tracker handled, called when a return/replacement
	// completes inside the transfer transaction.
	ResolveTx(ctx context.Context, tx *gorm.DB, stockInventoryID, ownerID uuid.UUID) error
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Scanned int
	Tracked int
	Expired int
}

type service struct {
	client *db.Client
	repo   Repository
	logg   *logger.Logger
}

// NewService wires an expiry service with its dependencies.
func NewService(client *db.Client, repo Repository, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("expiry repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, logg: logg}, nil
}

func (s *service) RunSweep(ctx context.Context, thresholdDays int) (*SweepReport, error) {
	if thresholdDays <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "threshold days must be positive")
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, thresholdDays)

	batches, err := s.repo.FindExpiringBatches(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(batches)}
	var sweepErr error
	for _, row := range batches {
		if err := s.trackBatch(ctx, row, now, report); err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("batch %s: %w", row.Batch.ID, err))
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"scanned": report.Scanned,
		"tracked": report.Tracked,
		"expired": report.Expired,
	}), "expiry sweep finished")

	return report, sweepErr
}

func (s *service) trackBatch(ctx context.Context, row ExpiringBatch, now time.Time, report *SweepReport) error {
	batch := row.Batch
	remaining := remainingDays(batch.ExpiryDate, now)
	status := enums.ExpiryStatusForDays(remaining)

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		tracker := &models.ExpiryTracker{
			StockInventoryID: batch.ID,
			OwnerID:          batch.OwnerID,
			BatchNumber:      batch.BatchNumber,
			RemainingDays:    remaining,
			Status:           status,
			CanRequestReturn: row.OwnerRole == enums.RoleAdmin,
		}
		if err := repo.UpsertTracker(ctx, tracker); err != nil {
			return err
		}
		report.Tracked++

		if status != enums.ExpiryStatusExpired || batch.IsExpired {
			return nil
		}

		rows, err := repo.MarkBatchExpired(ctx, batch.ID, batch.TotalQuantity)
		if err != nil {
			return err
		}
		// Zero rows means another sweep already retired the batch or its
		// quantity moved underneath us; the next run settles it.
		if rows == 0 {
			return nil
		}
		report.Expired++

		history := &models.StockInventoryHistory{
			StockInventoryID: batch.ID,
			OwnerID:          batch.OwnerID,
			OldQuantity:      batch.TotalQuantity,
			Delta:            -batch.TotalQuantity,
			NewQuantity:      0,
			Action:           enums.StockActionExpired,
			ReferenceID:      batch.BatchNumber,
		}
		return repo.CreateHistory(ctx, history)
	})
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, unresolvedOnly bool) ([]models.ExpiryTracker, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "owner id is required")
	}
	return s.repo.ListTrackers(ctx, ownerID, unresolvedOnly)
}

func (s *service) ResolveTx(ctx context.Context, tx *gorm.DB, stockInventoryID, ownerID uuid.UUID) error {
	if stockInventoryID == uuid.Nil || ownerID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "stock inventory id and owner id are required")
	}
	return s.repo.WithTx(tx).ResolveTracker(ctx, stockInventoryID, ownerID)
}

func remainingDays(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
