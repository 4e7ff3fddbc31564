package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/transfers"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/config"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
	"github.com/dhruvsahani/distrilink-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubWalletService struct{}

func (stubWalletService) EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	panic("unimplemented")
}

func (stubWalletService) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID, Balance: decimal.NewFromInt(42)}, nil
}

func (stubWalletService) Credit(ctx context.Context, input wallet.EntryInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) Debit(ctx context.Context, input wallet.EntryInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) Refund(ctx context.Context, input wallet.EntryInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	return nil, "", nil
}

func (stubWalletService) ListTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) CreditTx(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) DebitTx(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

type stubStockService struct{}

func (stubStockService) Receive(ctx context.Context, input stock.ReceiveInput) (*models.StockInventory, error) {
	panic("unimplemented")
}

func (stubStockService) ReceiveTx(ctx context.Context, tx *gorm.DB, input stock.ReceiveInput) (*models.StockInventory, error) {
	panic("unimplemented")
}

func (stubStockService) Adjust(ctx context.Context, input stock.AdjustInput) (*models.StockInventory, error) {
	panic("unimplemented")
}

func (stubStockService) AdjustTx(ctx context.Context, tx *gorm.DB, input stock.AdjustInput) (*models.StockInventory, error) {
	panic("unimplemented")
}

func (stubStockService) AllocateTx(ctx context.Context, tx *gorm.DB, input stock.AllocateInput) ([]stock.Allocation, error) {
	panic("unimplemented")
}

func (stubStockService) RenameBatchTx(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, newNumber string) error {
	panic("unimplemented")
}

func (stubStockService) GetBatchTx(ctx context.Context, tx *gorm.DB, key stock.BatchKey) (*models.StockInventory, error) {
	panic("unimplemented")
}

func (stubStockService) Availability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, ownerID uuid.UUID) (int, error) {
	panic("unimplemented")
}

func (stubStockService) ListBatches(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) ([]models.StockInventory, error) {
	return nil, nil
}

func (stubStockService) History(ctx context.Context, batchID uuid.UUID) ([]models.StockInventoryHistory, error) {
	panic("unimplemented")
}

type stubExpiryService struct{}

func (stubExpiryService) RunSweep(ctx context.Context, thresholdDays int) (*expiry.SweepReport, error) {
	panic("unimplemented")
}

func (stubExpiryService) List(ctx context.Context, ownerID uuid.UUID, unresolvedOnly bool) ([]models.ExpiryTracker, error) {
	return nil, nil
}

func (stubExpiryService) ResolveTx(ctx context.Context, tx *gorm.DB, stockInventoryID, ownerID uuid.UUID) error {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) CreateBulkOrder(ctx context.Context, input orders.CreateBulkOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Transition(ctx context.Context, input orders.TransitionInput) (*models.OrderHistory, error) {
	panic("unimplemented")
}

func (stubOrdersService) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	panic("unimplemented")
}

func (stubOrdersService) CreateRequest(ctx context.Context, input orders.CreateRequestInput) (*models.OrderRequest, error) {
	panic("unimplemented")
}

func (stubOrdersService) FlagForTransfer(ctx context.Context, requestID uuid.UUID) error {
	panic("unimplemented")
}

func (stubOrdersService) RunAutoTransferSweep(ctx context.Context) (*orders.AutoTransferReport, error) {
	panic("unimplemented")
}

type stubTransfersService struct{}

func (stubTransfersService) Create(ctx context.Context, input transfers.CreateInput) (*models.StockTransferRequest, error) {
	panic("unimplemented")
}

func (stubTransfersService) Get(ctx context.Context, requestID uuid.UUID) (*models.StockTransferRequest, error) {
	panic("unimplemented")
}

func (stubTransfersService) List(ctx context.Context, userID uuid.UUID) ([]models.StockTransferRequest, error) {
	return nil, nil
}

func (stubTransfersService) Transition(ctx context.Context, input transfers.TransitionInput) (*models.StockTransferRequest, error) {
	panic("unimplemented")
}

type stubNotificationsService struct{}

func (stubNotificationsService) Notify(ctx context.Context, input notifications.NotifyInput) {}

func (stubNotificationsService) Email(ctx context.Context, to, subject, body string) {}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) CleanupRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "dev", Port: "8080"}}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubWalletService{},
		stubStockService{},
		stubExpiryService{},
		stubOrdersService{},
		stubTransfersService{},
		stubNotificationsService{},
	)
}

func TestRouterHealthEndpoints(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if env := rec.Header().Get("X-DistriLink-Env"); env != "dev" {
			t.Fatalf("GET %s env header = %q, want dev", path, env)
		}
	}
}

func TestRouterPublicPing(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("data = %v, want status ok", envelope.Data)
	}
}

func TestRouterWalletBalance(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wallet/"+uuid.NewString(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "42") {
		t.Fatalf("expected stub balance in body, got %s", rec.Body.String())
	}
}

func TestRouterRejectsMalformedWalletEntry(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	body := strings.NewReader(`{"user_id":"not-a-uuid","amount":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/credit", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
