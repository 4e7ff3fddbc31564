package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/pagination"
)

// Repository manages persistence for wallets and their transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	// AddBalance applies a signed delta with a non-negative guard. It returns
	// the number of rows updated; zero means the guard rejected the change.
	AddBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (int64, error)
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
	ListTransactionsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) AddBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance + ? >= 0", walletID, delta).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	q := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var txns []models.WalletTransaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListTransactionsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
