package expiry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

func TestRunSweepBandsAndUpserts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	ownerID := seedOwner(t, conn, enums.RoleVendor)
	now := time.Now().UTC()

	soon := seedBatch(t, conn, ownerID, "BN-SOON", 10, now.AddDate(0, 0, 25))
	critical := seedBatch(t, conn, ownerID, "BN-CRIT", 10, now.AddDate(0, 0, 10))
	past := seedBatch(t, conn, ownerID, "BN-PAST", 10, now.AddDate(0, 0, -2))
	// Outside the 30-day window, must not be tracked.
	seedBatch(t, conn, ownerID, "BN-FAR", 10, now.AddDate(0, 0, 90))

	report, err := svc.RunSweep(ctx, 30)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 3 || report.Tracked != 3 || report.Expired != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Vendors hold their own stock, only admin batches can come back.
	assertStatus(t, conn, soon.ID, enums.ExpiryStatusExpiringSoon, false)
	assertStatus(t, conn, critical.ID, enums.ExpiryStatusCritical, false)
	assertStatus(t, conn, past.ID, enums.ExpiryStatusExpired, false)

	var batch models.StockInventory
	if err := conn.First(&batch, "id = ?", past.ID).Error; err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if !batch.IsExpired {
		t.Fatal("past-expiry batch not flagged expired")
	}
	if batch.TotalQuantity != 0 {
		t.Fatalf("retired batch still holds stock: %d", batch.TotalQuantity)
	}

	var history models.StockInventoryHistory
	if err := conn.First(&history, "stock_inventory_id = ?", past.ID).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if history.Action != enums.StockActionExpired || history.Delta != -10 || history.NewQuantity != 0 {
		t.Fatalf("unexpected expiry history row: %+v", history)
	}
}

func TestRunSweepScopesOwnersByRole(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	adminID := seedOwner(t, conn, enums.RoleAdmin)
	stockistID := seedOwner(t, conn, enums.RoleStockist)

	adminBatch := seedBatch(t, conn, adminID, "BN-ADM", 10, now.AddDate(0, 0, 20))
	stockistBatch := seedBatch(t, conn, stockistID, "BN-STK", 10, now.AddDate(0, 0, 20))

	report, err := svc.RunSweep(ctx, 30)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 1 || report.Tracked != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	assertStatus(t, conn, adminBatch.ID, enums.ExpiryStatusExpiringSoon, true)

	var count int64
	if err := conn.Model(&models.ExpiryTracker{}).
		Where("stock_inventory_id = ?", stockistBatch.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count trackers: %v", err)
	}
	if count != 0 {
		t.Fatalf("stockist batch must not be tracked, got %d trackers", count)
	}
}

func TestRunSweepIdempotent(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	ownerID := seedOwner(t, conn, enums.RoleVendor)
	now := time.Now().UTC()

	batch := seedBatch(t, conn, ownerID, "BN-REP", 10, now.AddDate(0, 0, -1))

	if _, err := svc.RunSweep(ctx, 30); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	report, err := svc.RunSweep(ctx, 30)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.Expired != 0 {
		t.Fatalf("second sweep re-expired the batch: %+v", report)
	}

	var trackers int64
	if err := conn.Model(&models.ExpiryTracker{}).
		Where("stock_inventory_id = ?", batch.ID).
		Count(&trackers).Error; err != nil {
		t.Fatalf("count trackers: %v", err)
	}
	if trackers != 1 {
		t.Fatalf("expected one tracker row, got %d", trackers)
	}

	var historyRows int64
	if err := conn.Model(&models.StockInventoryHistory{}).
		Where("stock_inventory_id = ?", batch.ID).
		Count(&historyRows).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if historyRows != 1 {
		t.Fatalf("expected one EXPIRED history row, got %d", historyRows)
	}
}

func TestResolveTxMarksTracker(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	ownerID := seedOwner(t, conn, enums.RoleAdmin)
	now := time.Now().UTC()

	batch := seedBatch(t, conn, ownerID, "BN-RES", 5, now.AddDate(0, 0, 5))
	if _, err := svc.RunSweep(ctx, 30); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if err := svc.ResolveTx(ctx, conn, batch.ID, ownerID); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	unresolved, err := svc.List(ctx, ownerID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("tracker still unresolved: %+v", unresolved)
	}
}

func assertStatus(t *testing.T, conn *gorm.DB, batchID uuid.UUID, want enums.ExpiryStatus, canReturn bool) {
	t.Helper()
	var tracker models.ExpiryTracker
	if err := conn.First(&tracker, "stock_inventory_id = ?", batchID).Error; err != nil {
		t.Fatalf("load tracker for %s: %v", batchID, err)
	}
	if tracker.Status != want {
		t.Fatalf("batch %s: expected status %s, got %s", batchID, want, tracker.Status)
	}
	if tracker.CanRequestReturn != canReturn {
		t.Fatalf("batch %s: expected can_request_return=%v", batchID, canReturn)
	}
}

func seedOwner(t *testing.T, conn *gorm.DB, role enums.Role) uuid.UUID {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: "owner-" + uuid.NewString(),
		Email:    "owner@example.com",
		Role:     role,
		IsActive: true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return user.ID
}

func seedBatch(t *testing.T, conn *gorm.DB, ownerID uuid.UUID, batchNumber string, qty int, expiry time.Time) *models.StockInventory {
	t.Helper()
	batch := &models.StockInventory{
		ProductID:       uuid.New(),
		OwnerID:         ownerID,
		BatchNumber:     batchNumber,
		TotalQuantity:   qty,
		ManufactureDate: expiry.AddDate(-2, 0, 0),
		ExpiryDate:      expiry,
	}
	if err := conn.Create(batch).Error; err != nil {
		t.Fatalf("seed batch %s: %v", batchNumber, err)
	}
	return batch
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:expiry_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.StockInventory{},
		&models.StockInventoryHistory{},
		&models.ExpiryTracker{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client, err := db.NewWithConn(conn)
	if err != nil {
		t.Fatalf("wrap client: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "expiry-test", Output: io.Discard})
	svc, err := NewService(client, NewRepository(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}
