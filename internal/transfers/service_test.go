package transfers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/directory"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type testEnv struct {
	conn      *gorm.DB
	transfers Service
	stocks    stock.Service

	raiser  *models.User
	admin   *models.User
	product *models.Product
}

func TestCreateDeductsRaiserStock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	batch := env.seedBatch(t, "BN-1", 10)

	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    4,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeDamaged,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(request.RequestID) < 5 || request.RequestID[:4] != "STR-" {
		t.Fatalf("unexpected request code: %q", request.RequestID)
	}
	if request.Status != enums.TransferRequestStatusPending {
		t.Fatalf("unexpected status: %s", request.Status)
	}
	if !request.OriginalStockDeducted {
		t.Fatal("deduction flag not set")
	}

	reloaded := env.reloadBatch(t, batch.ID)
	if reloaded.TotalQuantity != 6 {
		t.Fatalf("stock not deducted: %d", reloaded.TotalQuantity)
	}

	history, err := env.stocks.History(ctx, batch.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	last := history[len(history)-1]
	if last.Action != enums.StockActionReplacementStockDeducted || last.Delta != -4 {
		t.Fatalf("unexpected history row: %+v", last)
	}
	if last.ReferenceID != request.RequestID {
		t.Fatalf("history not tied to request code: %q", last.ReferenceID)
	}
}

func TestCreateRejectsOversizedReturn(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedBatch(t, "BN-1", 3)

	_, err := env.transfers.Create(context.Background(), CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    5,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeExpired,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	if err := env.conn.Model(&models.StockTransferRequest{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("request row leaked on failed deduction")
	}
}

func TestReceivedAddsReplacementUnderNewBatchNumber(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	batch := env.seedBatch(t, "BN-OLD", 10)
	if err := env.conn.Create(&models.ExpiryTracker{
		StockInventoryID: batch.ID,
		OwnerID:          env.raiser.ID,
		BatchNumber:      "BN-OLD",
		RemainingDays:    10,
		Status:           enums.ExpiryStatusCritical,
		CanRequestReturn: true,
	}).Error; err != nil {
		t.Fatalf("seed tracker: %v", err)
	}

	newNumber := "BN-NEW"
	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:     env.raiser.ID,
		RaisedToID:     env.admin.ID,
		ProductID:      env.product.ID,
		Quantity:       6,
		BatchNumber:    "BN-OLD",
		NewBatchNumber: &newNumber,
		Type:           enums.TransferRequestTypeExpired,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []enums.TransferRequestStatus{
		enums.TransferRequestStatusApproved,
		enums.TransferRequestStatusInTransit,
		enums.TransferRequestStatusDispatched,
		enums.TransferRequestStatusReceived,
	} {
		if _, err := env.transfers.Transition(ctx, TransitionInput{
			RequestID: request.ID,
			NewStatus: status,
		}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	reloaded := env.reloadBatch(t, batch.ID)
	if reloaded.TotalQuantity != 10 {
		t.Fatalf("replacement not credited: %d", reloaded.TotalQuantity)
	}
	if reloaded.BatchNumber != "BN-NEW" {
		t.Fatalf("batch not renamed: %s", reloaded.BatchNumber)
	}

	settled, err := env.transfers.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settled.ReplacementStockAdded || !settled.IsResolved || settled.CompletedAt == nil {
		t.Fatalf("request not settled: %+v", settled)
	}

	var tracker models.ExpiryTracker
	if err := env.conn.First(&tracker, "stock_inventory_id = ?", batch.ID).Error; err != nil {
		t.Fatalf("load tracker: %v", err)
	}
	if !tracker.IsResolved {
		t.Fatal("expiry tracker not resolved on completion")
	}
}

func TestReceivedReplayCompensatesOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	batch := env.seedBatch(t, "BN-1", 10)
	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    3,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeDefective,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []enums.TransferRequestStatus{
		enums.TransferRequestStatusApproved,
		enums.TransferRequestStatusInTransit,
		enums.TransferRequestStatusDispatched,
		enums.TransferRequestStatusReceived,
		enums.TransferRequestStatusReceived, // replayed delivery
	} {
		if _, err := env.transfers.Transition(ctx, TransitionInput{
			RequestID: request.ID,
			NewStatus: status,
		}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	reloaded := env.reloadBatch(t, batch.ID)
	if reloaded.TotalQuantity != 10 {
		t.Fatalf("replay double-compensated: %d", reloaded.TotalQuantity)
	}
}

func TestRejectedRestoresStock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	batch := env.seedBatch(t, "BN-1", 10)
	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    4,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeWrongProduct,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.transfers.Transition(ctx, TransitionInput{
		RequestID:  request.ID,
		NewStatus:  enums.TransferRequestStatusRejected,
		AdminNotes: "not eligible",
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	reloaded := env.reloadBatch(t, batch.ID)
	if reloaded.TotalQuantity != 10 {
		t.Fatalf("stock not restored: %d", reloaded.TotalQuantity)
	}

	history, err := env.stocks.History(ctx, batch.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	last := history[len(history)-1]
	if last.Action != enums.StockActionRequestRejectedStockRestored || last.Delta != 4 {
		t.Fatalf("unexpected history row: %+v", last)
	}

	settled, err := env.transfers.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !settled.IsResolved || settled.AdminNotes != "not eligible" {
		t.Fatalf("request not settled: %+v", settled)
	}
}

func TestTransitionRejectsInvalidJump(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	env.seedBatch(t, "BN-1", 10)
	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    2,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeOther,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.transfers.Transition(ctx, TransitionInput{
		RequestID: request.ID,
		NewStatus: enums.TransferRequestStatusDispatched,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rejection is only reachable from pending.
	if _, err := env.transfers.Transition(ctx, TransitionInput{
		RequestID: request.ID, NewStatus: enums.TransferRequestStatusApproved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = env.transfers.Transition(ctx, TransitionInput{
		RequestID: request.ID, NewStatus: enums.TransferRequestStatusRejected,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingBatchAtCompensationLeavesRequestUnresolved(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	batch := env.seedBatch(t, "BN-1", 10)
	request, err := env.transfers.Create(ctx, CreateInput{
		RaisedByID:  env.raiser.ID,
		RaisedToID:  env.admin.ID,
		ProductID:   env.product.ID,
		Quantity:    3,
		BatchNumber: "BN-1",
		Type:        enums.TransferRequestTypeDamaged,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.conn.Delete(&models.StockInventory{}, "id = ?", batch.ID).Error; err != nil {
		t.Fatalf("drop batch: %v", err)
	}

	updated, err := env.transfers.Transition(ctx, TransitionInput{
		RequestID: request.ID,
		NewStatus: enums.TransferRequestStatusRejected,
	})
	if err != nil {
		t.Fatalf("transition should survive a missing batch: %v", err)
	}
	if updated.Status != enums.TransferRequestStatusRejected {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	settled, err := env.transfers.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if settled.IsResolved {
		t.Fatal("request must stay unresolved when the batch is gone")
	}
}

func (env *testEnv) seedBatch(t *testing.T, batchNumber string, qty int) *models.StockInventory {
	t.Helper()
	batch, err := env.stocks.Receive(context.Background(), stock.ReceiveInput{
		Key: stock.BatchKey{
			ProductID:   env.product.ID,
			OwnerID:     env.raiser.ID,
			BatchNumber: batchNumber,
		},
		Quantity:        qty,
		ManufactureDate: time.Now().UTC().AddDate(0, -6, 0),
		ExpiryDate:      time.Now().UTC().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch
}

func (env *testEnv) reloadBatch(t *testing.T, batchID uuid.UUID) *models.StockInventory {
	t.Helper()
	var batch models.StockInventory
	if err := env.conn.First(&batch, "id = ?", batchID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	return &batch
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error { return nil }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:transfers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.StockInventory{},
		&models.StockInventoryHistory{},
		&models.ExpiryTracker{},
		&models.StockTransferRequest{},
		&models.OrderRequest{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client, err := db.NewWithConn(conn)
	if err != nil {
		t.Fatalf("wrap client: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "transfers-test", Output: io.Discard})

	stocks, err := stock.NewService(client, stock.NewRepository(conn))
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}
	expiries, err := expiry.NewService(client, expiry.NewRepository(conn), logg)
	if err != nil {
		t.Fatalf("expiry service: %v", err)
	}
	directorySvc, err := directory.NewService(conn)
	if err != nil {
		t.Fatalf("directory service: %v", err)
	}
	notifier, err := notifications.NewService(conn, noopMailer{}, logg)
	if err != nil {
		t.Fatalf("notification service: %v", err)
	}

	transfersSvc, err := NewService(client, NewRepository(conn), stocks, expiries, directorySvc, notifier, logg)
	if err != nil {
		t.Fatalf("transfer service: %v", err)
	}

	env := &testEnv{conn: conn, transfers: transfersSvc, stocks: stocks}

	env.raiser = &models.User{
		Username: "stockist-" + uuid.NewString()[:8],
		Email:    "stockist@example.com",
		Role:     enums.RoleStockist,
		IsActive: true,
	}
	env.admin = &models.User{
		Username: "admin-" + uuid.NewString()[:8],
		Email:    "admin@example.com",
		Role:     enums.RoleAdmin,
		IsActive: true,
	}
	for _, user := range []*models.User{env.raiser, env.admin} {
		if err := conn.Create(user).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	env.product = &models.Product{OwnerID: env.admin.ID, Name: "Paracetamol 650", IsActive: true}
	if err := conn.Create(env.product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return env
}
