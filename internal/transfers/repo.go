package transfers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// Repository manages persistence for stock transfer requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, request *models.StockTransferRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockTransferRequest, error)
	// UpdateStatus moves status only when the current value matches, returning
	// the number of rows updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.TransferRequestStatus, adminNotes string) (int64, error)
	Save(ctx context.Context, request *models.StockTransferRequest) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StockTransferRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transfer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.StockTransferRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.StockTransferRequest, error) {
	var request models.StockTransferRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.TransferRequestStatus, adminNotes string) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}
	res := r.db.WithContext(ctx).
		Model(&models.StockTransferRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Save(ctx context.Context, request *models.StockTransferRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StockTransferRequest, error) {
	var requests []models.StockTransferRequest
	if err := r.db.WithContext(ctx).
		Where("raised_by_id = ? OR raised_to_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
