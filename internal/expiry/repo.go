package expiry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// ExpiringBatch pairs a batch with the role of the user holding it.
type ExpiringBatch struct {
	Batch     models.StockInventory
	OwnerRole enums.Role
}

// Repository manages expiry trackers and the batch columns the sweep touches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// FindExpiringBatches returns admin and vendor owned batches holding
	// stock whose expiry date falls on or before the cutoff.
	FindExpiringBatches(ctx context.Context, cutoff time.Time) ([]ExpiringBatch, error)
	UpsertTracker(ctx context.Context, tracker *models.ExpiryTracker) error
	// MarkBatchExpired retires the batch, zeroing its quantity, only when
	// it is not yet expired and still holds oldQuantity units.
	MarkBatchExpired(ctx context.Context, batchID uuid.UUID, oldQuantity int) (int64, error)
	CreateHistory(ctx context.Context, row *models.StockInventoryHistory) error
	ListTrackers(ctx context.Context, ownerID uuid.UUID, unresolvedOnly bool) ([]models.ExpiryTracker, error)
	ResolveTracker(ctx context.Context, stockInventoryID, ownerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expiry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindExpiringBatches(ctx context.Context, cutoff time.Time) ([]ExpiringBatch, error) {
	var batches []models.StockInventory
	if err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = stock_inventory.owner_id").
		Where("users.role IN ?", []enums.Role{enums.RoleAdmin, enums.RoleVendor}).
		Where("stock_inventory.total_quantity > 0 AND stock_inventory.expiry_date <= ?", cutoff).
		Order("stock_inventory.expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}

	ownerIDs := make([]uuid.UUID, 0, len(batches))
	seen := make(map[uuid.UUID]struct{}, len(batches))
	for _, batch := range batches {
		if _, ok := seen[batch.OwnerID]; ok {
			continue
		}
		seen[batch.OwnerID] = struct{}{}
		ownerIDs = append(ownerIDs, batch.OwnerID)
	}

	var owners []models.User
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ownerIDs).
		Find(&owners).Error; err != nil {
		return nil, err
	}
	roles := make(map[uuid.UUID]enums.Role, len(owners))
	for _, owner := range owners {
		roles[owner.ID] = owner.Role
	}

	rows := make([]ExpiringBatch, 0, len(batches))
	for _, batch := range batches {
		rows = append(rows, ExpiringBatch{Batch: batch, OwnerRole: roles[batch.OwnerID]})
	}
	return rows, nil
}

func (r *repository) UpsertTracker(ctx context.Context, tracker *models.ExpiryTracker) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "stock_inventory_id"},
				{Name: "owner_id"},
				{Name: "batch_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"remaining_days", "status", "can_request_return", "updated_at",
			}),
		}).
		Create(tracker).Error
}

func (r *repository) MarkBatchExpired(ctx context.Context, batchID uuid.UUID, oldQuantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockInventory{}).
		Where("id = ? AND is_expired = ? AND total_quantity = ?", batchID, false, oldQuantity).
		Updates(map[string]any{
			"is_expired":     true,
			"total_quantity": 0,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateHistory(ctx context.Context, row *models.StockInventoryHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListTrackers(ctx context.Context, ownerID uuid.UUID, unresolvedOnly bool) ([]models.ExpiryTracker, error) {
	q := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("remaining_days ASC")
	if unresolvedOnly {
		q = q.Where("is_resolved = ?", false)
	}

	var trackers []models.ExpiryTracker
	if err := q.Find(&trackers).Error; err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *repository) ResolveTracker(ctx context.Context, stockInventoryID, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ExpiryTracker{}).
		Where("stock_inventory_id = ? AND owner_id = ?", stockInventoryID, ownerID).
		Updates(map[string]any{
			"is_resolved": true,
			"updated_at":  time.Now().UTC(),
		}).Error
}
