package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
)

// Repository manages persistence for orders, their history, order requests
// and sales.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// UpdateOrderStatus moves status only when the current value matches,
	// returning the number of rows updated.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error

	CreateHistory(ctx context.Context, row *models.OrderHistory) error
	LatestHistory(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error)
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error)

	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSaleByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Sale, error)

	CreateRequest(ctx context.Context, request *models.OrderRequest) error
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.OrderRequest, error)
	UpdateRequest(ctx context.Context, request *models.OrderRequest) error
	FindDueRequests(ctx context.Context, now time.Time) ([]models.OrderRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateHistory(ctx context.Context, row *models.OrderHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) LatestHistory(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error) {
	var row models.OrderHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	var rows []models.OrderHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) GetSaleByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) CreateRequest(ctx context.Context, request *models.OrderRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.OrderRequest, error) {
	var request models.OrderRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) UpdateRequest(ctx context.Context, request *models.OrderRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) FindDueRequests(ctx context.Context, now time.Time) ([]models.OrderRequest, error) {
	var requests []models.OrderRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND transfer_due_at IS NOT NULL AND transfer_due_at <= ?",
			enums.OrderRequestStatusPending, now).
		Order("transfer_due_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
