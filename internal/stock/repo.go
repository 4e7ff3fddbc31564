package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// BatchKey identifies one batch of one variant held by one owner.
type BatchKey struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	OwnerID     uuid.UUID
	BatchNumber string
}

// Repository manages persistence for stock batches and their history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, batch *models.StockInventory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockInventory, error)
	GetByKey(ctx context.Context, key BatchKey) (*models.StockInventory, error)
	// FindAllocatable returns batches with stock on hand that are neither
	// flagged expired nor past their expiry date, oldest manufacture first.
	// Allocation drains these in order.
	FindAllocatable(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, ownerID uuid.UUID) ([]models.StockInventory, error)
	// AddQuantity applies a signed delta with a non-negative guard. It returns
	// the number of rows updated; zero means the guard rejected the change.
	AddQuantity(ctx context.Context, batchID uuid.UUID, delta int) (int64, error)
	UpdateBatchNumber(ctx context.Context, batchID uuid.UUID, newNumber string) error
	MarkExpired(ctx context.Context, batchID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) ([]models.StockInventory, error)
	// ClearTransferDue unblocks pending order requests aimed at an owner who
	// just regained stock for the product.
	ClearTransferDue(ctx context.Context, ownerID, productID uuid.UUID, variantID *uuid.UUID) error
	CreateHistory(ctx context.Context, row *models.StockInventoryHistory) error
	ListHistory(ctx context.Context, batchID uuid.UUID) ([]models.StockInventoryHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, batch *models.StockInventory) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.StockInventory, error) {
	var batch models.StockInventory
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) GetByKey(ctx context.Context, key BatchKey) (*models.StockInventory, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ? AND owner_id = ? AND batch_number = ?", key.ProductID, key.OwnerID, key.BatchNumber)
	if key.VariantID != nil {
		q = q.Where("variant_id = ?", *key.VariantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	var batch models.StockInventory
	if err := q.First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) FindAllocatable(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, ownerID uuid.UUID) ([]models.StockInventory, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ? AND owner_id = ?", productID, ownerID).
		Where("total_quantity > 0 AND is_expired = ?", false).
		Where("expiry_date > ?", time.Now().UTC()).
		Order("manufacture_date ASC, created_at ASC, id ASC")
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	var batches []models.StockInventory
	if err := q.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) AddQuantity(ctx context.Context, batchID uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockInventory{}).
		Where("id = ? AND total_quantity + ? >= 0", batchID, delta).
		Updates(map[string]any{
			"total_quantity": gorm.Expr("total_quantity + ?", delta),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdateBatchNumber(ctx context.Context, batchID uuid.UUID, newNumber string) error {
	return r.db.WithContext(ctx).
		Model(&models.StockInventory{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"batch_number": newNumber,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *repository) MarkExpired(ctx context.Context, batchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StockInventory{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"is_expired": true,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) ([]models.StockInventory, error) {
	q := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("manufacture_date ASC, created_at ASC, id ASC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}

	var batches []models.StockInventory
	if err := q.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) ClearTransferDue(ctx context.Context, ownerID, productID uuid.UUID, variantID *uuid.UUID) error {
	q := r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("target_user_id = ? AND product_id = ?", ownerID, productID).
		Where("status = ? AND transfer_due_at IS NOT NULL", enums.OrderRequestStatusPending)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	return q.Update("transfer_due_at", nil).Error
}

func (r *repository) CreateHistory(ctx context.Context, row *models.StockInventoryHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListHistory(ctx context.Context, batchID uuid.UUID) ([]models.StockInventoryHistory, error) {
	var rows []models.StockInventoryHistory
	if err := r.db.WithContext(ctx).
		Where("stock_inventory_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
