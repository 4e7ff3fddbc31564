package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/pagination"
)

// Service defines wallet ledger operations. Balances only move through
// Credit/Debit entries; every movement leaves a transaction row behind.
type Service interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error)
	Refund(ctx context.Context, input EntryInput) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error)
	ListTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error)

	// CreditTx and DebitTx run against a caller-owned transaction so order
	// placement can compose wallet moves with stock allocation atomically.
	CreditTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	DebitTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
}

// EntryInput captures one wallet movement request.
type EntryInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	OrderID     *uuid.UUID
	Status      enums.WalletTransactionStatus
}

type service struct {
	client *db.Client
	repo   Repository
}

// NewService wires a wallet service with its database dependencies.
func NewService(client *db.Client, repo Repository) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{client: client, repo: repo}, nil
}

func (s *service) EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	wallet, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &models.Wallet{UserID: userID, Balance: decimal.Zero}
	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	wallet, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "wallet not found")
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) Credit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error) {
	var txn *models.WalletTransaction
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.CreditTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Debit(ctx context.Context, input EntryInput) (*models.WalletTransaction, error) {
	var txn *models.WalletTransaction
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.DebitTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Refund(ctx context.Context, input EntryInput) (*models.WalletTransaction, error) {
	if input.OrderID == nil || *input.OrderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required for refunds")
	}
	input.Status = enums.WalletTransactionStatusRefund
	return s.Credit(ctx, input)
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, enums.WalletTransactionTypeCredit, input)
}

func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, enums.WalletTransactionTypeDebit, input)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, entryType enums.WalletTransactionType, input EntryInput) (*models.WalletTransaction, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}

	status := input.Status
	if status == "" {
		status = enums.WalletTransactionStatusSuccess
	}
	if !status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid transaction status %q", status))
	}

	repo := s.repo.WithTx(tx)

	wallet, err := repo.GetByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "wallet not found")
		}
		return nil, err
	}

	delta := input.Amount
	if entryType == enums.WalletTransactionTypeDebit {
		delta = delta.Neg()
	}

	rows, err := repo.AddBalance(ctx, wallet.ID, delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientFunds, "wallet balance would go negative").
			WithDetails(map[string]string{
				"balance":   wallet.Balance.StringFixed(2),
				"requested": input.Amount.StringFixed(2),
			})
	}

	txn := &models.WalletTransaction{
		WalletID:    wallet.ID,
		Type:        entryType,
		Amount:      input.Amount,
		Status:      status,
		Description: input.Description,
		OrderID:     input.OrderID,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ListTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error) {
	if orderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	return s.repo.ListTransactionsByOrderID(ctx, orderID)
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	wallet, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	txns, err := s.repo.ListTransactions(ctx, wallet.ID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}
