package stock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
)

// Service owns every batch quantity mutation. Each change is guarded against
// going negative and pairs with exactly one history row, so the history chain
// always reconciles with the batch's current quantity.
type Service interface {
	Receive(ctx context.Context, input ReceiveInput) (*models.StockInventory, error)
	ReceiveTx(ctx context.Context, tx *gorm.DB, input ReceiveInput) (*models.StockInventory, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockInventory, error)
	AdjustTx(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockInventory, error)
	// AllocateTx drains batches oldest-manufactured-first until the requested
	// quantity is covered, failing the whole allocation when stock runs short.
	AllocateTx(ctx context.Context, tx *gorm.DB, input AllocateInput) ([]Allocation, error)
	RenameBatchTx(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, newNumber string) error
	GetBatchTx(ctx context.Context, tx *gorm.DB, key BatchKey) (*models.StockInventory, error)
	Availability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, ownerID uuid.UUID) (int, error)
	ListBatches(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) ([]models.StockInventory, error)
	History(ctx context.Context, batchID uuid.UUID) ([]models.StockInventoryHistory, error)
}

// ReceiveInput adds stock into an owner's batch, creating the batch row on
// first receipt.
type ReceiveInput struct {
	Key             BatchKey
	Quantity        int
	ManufactureDate time.Time
	ExpiryDate      time.Time
	Action          enums.StockAction
	ReferenceID     string
}

// AdjustInput applies one signed quantity delta against a known batch.
type AdjustInput struct {
	BatchID     uuid.UUID
	Delta       int
	Action      enums.StockAction
	ReferenceID string
}

// AllocateInput requests stock for one order line across however many batches
// it takes to satisfy it.
type AllocateInput struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	OwnerID     uuid.UUID
	Quantity    int
	Action      enums.StockAction
	ReferenceID string
}

// Allocation records how much was drawn from one batch.
type Allocation struct {
	Batch    models.StockInventory
	Quantity int
}

type service struct {
	client *db.Client
	repo   Repository
}

// NewService wires a stock service with its database dependencies.
func NewService(client *db.Client, repo Repository) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{client: client, repo: repo}, nil
}

func (s *service) Receive(ctx context.Context, input ReceiveInput) (*models.StockInventory, error) {
	var batch *models.StockInventory
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.ReceiveTx(ctx, tx, input)
		if err != nil {
			return err
		}
		batch = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) ReceiveTx(ctx context.Context, tx *gorm.DB, input ReceiveInput) (*models.StockInventory, error) {
	if input.Key.ProductID == uuid.Nil || input.Key.OwnerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id and owner id are required")
	}
	if input.Key.BatchNumber == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "batch number is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}
	action := input.Action
	if action == "" {
		action = enums.StockActionAdd
	}
	if !action.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid stock action %q", action))
	}

	repo := s.repo.WithTx(tx)

	existing, err := repo.GetByKey(ctx, input.Key)
	if err == nil {
		return s.adjust(ctx, repo, AdjustInput{
			BatchID:     existing.ID,
			Delta:       input.Quantity,
			Action:      action,
			ReferenceID: input.ReferenceID,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.ManufactureDate.IsZero() || input.ExpiryDate.IsZero() {
		return nil, apperrors.New(apperrors.CodeValidation, "manufacture and expiry dates are required for new batches")
	}

	batch := &models.StockInventory{
		ProductID:       input.Key.ProductID,
		VariantID:       input.Key.VariantID,
		OwnerID:         input.Key.OwnerID,
		BatchNumber:     input.Key.BatchNumber,
		TotalQuantity:   input.Quantity,
		ManufactureDate: input.ManufactureDate,
		ExpiryDate:      input.ExpiryDate,
	}
	if err := repo.Create(ctx, batch); err != nil {
		return nil, err
	}

	history := &models.StockInventoryHistory{
		StockInventoryID: batch.ID,
		OwnerID:          batch.OwnerID,
		OldQuantity:      0,
		Delta:            input.Quantity,
		NewQuantity:      input.Quantity,
		Action:           action,
		ReferenceID:      input.ReferenceID,
	}
	if err := repo.CreateHistory(ctx, history); err != nil {
		return nil, err
	}
	if err := repo.ClearTransferDue(ctx, batch.OwnerID, batch.ProductID, batch.VariantID); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockInventory, error) {
	var batch *models.StockInventory
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.AdjustTx(ctx, tx, input)
		if err != nil {
			return err
		}
		batch = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) AdjustTx(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockInventory, error) {
	return s.adjust(ctx, s.repo.WithTx(tx), input)
}

func (s *service) adjust(ctx context.Context, repo Repository, input AdjustInput) (*models.StockInventory, error) {
	if input.BatchID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "batch id is required")
	}
	if input.Delta == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "delta must be non-zero")
	}
	if !input.Action.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid stock action %q", input.Action))
	}

	rows, err := repo.AddQuantity(ctx, input.BatchID, input.Delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := repo.GetByID(ctx, input.BatchID); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "stock batch not found")
		}
		return nil, apperrors.New(apperrors.CodeInsufficientStock, "batch quantity would go negative").
			WithDetails(map[string]string{
				"batch_id":  input.BatchID.String(),
				"requested": strconv.Itoa(-input.Delta),
			})
	}

	batch, err := repo.GetByID(ctx, input.BatchID)
	if err != nil {
		return nil, err
	}

	history := &models.StockInventoryHistory{
		StockInventoryID: batch.ID,
		OwnerID:          batch.OwnerID,
		OldQuantity:      batch.TotalQuantity - input.Delta,
		Delta:            input.Delta,
		NewQuantity:      batch.TotalQuantity,
		Action:           input.Action,
		ReferenceID:      input.ReferenceID,
	}
	if err := repo.CreateHistory(ctx, history); err != nil {
		return nil, err
	}
	// Regained stock lifts the auto-transfer countdown on any waiting
	// requests aimed at this owner.
	if input.Delta > 0 {
		if err := repo.ClearTransferDue(ctx, batch.OwnerID, batch.ProductID, batch.VariantID); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func (s *service) AllocateTx(ctx context.Context, tx *gorm.DB, input AllocateInput) ([]Allocation, error) {
	if input.ProductID == uuid.Nil || input.OwnerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id and owner id are required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}
	action := input.Action
	if action == "" {
		action = enums.StockActionOrder
	}

	repo := s.repo.WithTx(tx)

	batches, err := repo.FindAllocatable(ctx, input.ProductID, input.VariantID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	remaining := input.Quantity
	allocations := make([]Allocation, 0, len(batches))
	for _, candidate := range batches {
		if remaining == 0 {
			break
		}
		take := remaining
		if candidate.TotalQuantity < take {
			take = candidate.TotalQuantity
		}
		if take == 0 {
			continue
		}

		updated, err := s.adjust(ctx, repo, AdjustInput{
			BatchID:     candidate.ID,
			Delta:       -take,
			Action:      action,
			ReferenceID: input.ReferenceID,
		})
		if err != nil {
			// Another writer drained this batch between the read and the
			// guarded update. Move on to the next candidate.
			if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeInsufficientStock {
				continue
			}
			return nil, err
		}
		allocations = append(allocations, Allocation{Batch: *updated, Quantity: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientStock, "not enough stock to satisfy allocation").
			WithDetails(map[string]string{
				"product_id": input.ProductID.String(),
				"owner_id":   input.OwnerID.String(),
				"requested":  strconv.Itoa(input.Quantity),
				"short_by":   strconv.Itoa(remaining),
			})
	}
	return allocations, nil
}

func (s *service) RenameBatchTx(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, newNumber string) error {
	if batchID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "batch id is required")
	}
	if newNumber == "" {
		return apperrors.New(apperrors.CodeValidation, "new batch number is required")
	}
	return s.repo.WithTx(tx).UpdateBatchNumber(ctx, batchID, newNumber)
}

func (s *service) GetBatchTx(ctx context.Context, tx *gorm.DB, key BatchKey) (*models.StockInventory, error) {
	if key.ProductID == uuid.Nil || key.OwnerID == uuid.Nil || key.BatchNumber == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "product id, owner id and batch number are required")
	}
	batch, err := s.repo.WithTx(tx).GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "stock batch not found")
		}
		return nil, err
	}
	return batch, nil
}

func (s *service) Availability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, ownerID uuid.UUID) (int, error) {
	batches, err := s.repo.FindAllocatable(ctx, productID, variantID, ownerID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, batch := range batches {
		total += batch.TotalQuantity
	}
	return total, nil
}

func (s *service) ListBatches(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) ([]models.StockInventory, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "owner id is required")
	}
	return s.repo.ListByOwner(ctx, ownerID, productID)
}

func (s *service) History(ctx context.Context, batchID uuid.UUID) ([]models.StockInventoryHistory, error) {
	if batchID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "batch id is required")
	}
	return s.repo.ListHistory(ctx, batchID)
}
