package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/pagination"
)

func TestCreditAndDebit(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.EnsureWallet(ctx, userID); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}

	txn, err := svc.Credit(ctx, EntryInput{
		UserID:      userID,
		Amount:      decimal.RequireFromString("150.00"),
		Description: "opening top-up",
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if txn.Type != enums.WalletTransactionTypeCredit {
		t.Fatalf("unexpected txn type: %s", txn.Type)
	}
	if txn.Status != enums.WalletTransactionStatusSuccess {
		t.Fatalf("unexpected txn status: %s", txn.Status)
	}

	orderID := uuid.New()
	if _, err := svc.Debit(ctx, EntryInput{
		UserID:      userID,
		Amount:      decimal.RequireFromString("40.50"),
		Description: "order payment",
		OrderID:     &orderID,
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	wallet, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !wallet.Balance.Equal(decimal.RequireFromString("109.50")) {
		t.Fatalf("unexpected balance: %s", wallet.Balance)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.EnsureWallet(ctx, userID); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	if _, err := svc.Credit(ctx, EntryInput{UserID: userID, Amount: decimal.RequireFromString("10.00")}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	_, err := svc.Debit(ctx, EntryInput{UserID: userID, Amount: decimal.RequireFromString("10.01")})
	if err == nil {
		t.Fatal("expected insufficient funds error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientFunds {
		t.Fatalf("unexpected error: %v", err)
	}

	// The failed debit must leave no transaction row behind.
	var count int64
	if err := conn.Model(&models.WalletTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the credit row, got %d", count)
	}

	wallet, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !wallet.Balance.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("balance changed after failed debit: %s", wallet.Balance)
	}
}

func TestDebitMissingWallet(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Debit(context.Background(), EntryInput{
		UserID: uuid.New(),
		Amount: decimal.RequireFromString("5.00"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRefundRequiresOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.EnsureWallet(ctx, userID); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}

	_, err := svc.Refund(ctx, EntryInput{UserID: userID, Amount: decimal.RequireFromString("5.00")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got: %v", err)
	}

	orderID := uuid.New()
	txn, err := svc.Refund(ctx, EntryInput{
		UserID:  userID,
		Amount:  decimal.RequireFromString("5.00"),
		OrderID: &orderID,
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if txn.Type != enums.WalletTransactionTypeCredit || txn.Status != enums.WalletTransactionStatusRefund {
		t.Fatalf("unexpected refund txn: %+v", txn)
	}
}

func TestEnsureWalletIdempotent(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.EnsureWallet(ctx, userID)
	if err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	second, err := svc.EnsureWallet(ctx, userID)
	if err != nil {
		t.Fatalf("ensure wallet again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same wallet, got %s and %s", first.ID, second.ID)
	}

	var count int64
	if err := conn.Model(&models.Wallet{}).Count(&count).Error; err != nil {
		t.Fatalf("count wallets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one wallet, got %d", count)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.EnsureWallet(ctx, userID); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.Credit(ctx, EntryInput{UserID: userID, Amount: decimal.NewFromInt(1)}); err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}

	page, next, err := svc.ListTransactions(ctx, userID, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}
	if next == "" {
		t.Fatal("expected next cursor")
	}

	rest, next2, err := svc.ListTransactions(ctx, userID, pagination.Params{Limit: 3, Cursor: next})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rest))
	}
	if next2 != "" {
		t.Fatalf("unexpected cursor on final page: %s", next2)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:wallet_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Wallet{}, &models.WalletTransaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client, err := db.NewWithConn(conn)
	if err != nil {
		t.Fatalf("wrap client: %v", err)
	}
	svc, err := NewService(client, NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}
