package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
)

// nextStatus is the single forward step in the fulfilment chain. Rejection
// and cancellation are reachable from any non-terminal state instead.
var nextStatus = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusNew:              enums.OrderStatusAccepted,
	enums.OrderStatusAccepted:         enums.OrderStatusReadyForDispatch,
	enums.OrderStatusReadyForDispatch: enums.OrderStatusDispatched,
	enums.OrderStatusDispatched:       enums.OrderStatusDelivered,
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusRejected || to == enums.OrderStatusCancelled {
		return true
	}
	return nextStatus[from] == to
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.OrderHistory, error) {
	if input.OrderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order id is required")
	}
	if input.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor id is required")
	}
	if !input.NewStatus.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.NewStatus))
	}

	order, err := s.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, input.NewStatus) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, input.NewStatus)).
			WithDetails(map[string]string{
				"current":   order.Status.String(),
				"requested": input.NewStatus.String(),
			})
	}

	// Delivery credits the seller; make sure the wallet row exists before
	// entering the transaction.
	if input.NewStatus == enums.OrderStatusDelivered {
		if _, err := s.wallets.EnsureWallet(ctx, order.SellerID); err != nil {
			return nil, err
		}
	}

	var history *models.OrderHistory
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, input.NewStatus)
		if err != nil {
			return err
		}
		// A concurrent transition won the race; the caller can re-read and
		// retry against the fresh status.
		if rows == 0 {
			return apperrors.New(apperrors.CodeConflict, "order status changed concurrently")
		}

		previous := order.Status
		if latest, err := repo.LatestHistory(ctx, order.ID); err != nil {
			return err
		} else if latest != nil {
			previous = latest.CurrentStatus
		}

		history = &models.OrderHistory{
			OrderID:        order.ID,
			PreviousStatus: previous,
			CurrentStatus:  input.NewStatus,
			ActorID:        input.ActorID,
			Notes:          input.Notes,
		}
		if err := repo.CreateHistory(ctx, history); err != nil {
			return err
		}

		switch input.NewStatus {
		case enums.OrderStatusDelivered:
			return s.settleDelivery(ctx, tx, repo, order)
		case enums.OrderStatusRejected, enums.OrderStatusCancelled:
			return s.compensateAbort(ctx, tx, order, input.NewStatus)
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	buyer, dirErr := s.directory.GetUser(ctx, order.BuyerID)
	if dirErr != nil {
		buyer = nil
	}
	s.notifyOrder(ctx, order, buyer,
		"Order "+input.NewStatus.String(),
		fmt.Sprintf("Order %s is now %s", order.ID, input.NewStatus))

	return history, nil
}

// settleDelivery records the sale, credits the seller, and moves the
// delivered stock into the buyer's inventory. The unique order id on sales
// makes a duplicate delivery event a no-op.
func (s *service) settleDelivery(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) error {
	existing, err := repo.GetSaleByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := repo.CreateSale(ctx, &models.Sale{
		OrderID:    order.ID,
		SellerID:   order.SellerID,
		BuyerID:    order.BuyerID,
		TotalPrice: order.TotalPrice,
	}); err != nil {
		// A concurrent delivery can slip past the read above; the unique
		// order id keeps the sale single.
		if db.IsUniqueViolation(err, "sales_order_id_key") {
			return nil
		}
		return err
	}

	if _, err := s.wallets.CreditTx(ctx, tx, wallet.EntryInput{
		UserID:      order.SellerID,
		Amount:      order.TotalPrice,
		Description: "order delivered",
		OrderID:     &order.ID,
		Status:      enums.WalletTransactionStatusReceived,
	}); err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := s.stocks.ReceiveTx(ctx, tx, stock.ReceiveInput{
			Key: stock.BatchKey{
				ProductID:   item.ProductID,
				VariantID:   item.VariantID,
				OwnerID:     order.BuyerID,
				BatchNumber: item.BatchNumber,
			},
			Quantity:        item.Quantity,
			ManufactureDate: item.ManufactureDate,
			ExpiryDate:      item.ExpiryDate,
			Action:          enums.StockActionAdd,
			ReferenceID:     order.ID.String(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// compensateAbort refunds the buyer and restores the seller's stock. Both
// sides are idempotent: the refund checks for an existing REFUND row and the
// restore replays batch receipts inside the same transaction.
func (s *service) compensateAbort(ctx context.Context, tx *gorm.DB, order *models.Order, reason enums.OrderStatus) error {
	refunded, err := s.hasRefund(ctx, order.ID)
	if err != nil {
		return err
	}
	if !refunded {
		if _, err := s.wallets.CreditTx(ctx, tx, wallet.EntryInput{
			UserID:      order.BuyerID,
			Amount:      order.TotalPrice,
			Description: "order " + reason.String(),
			OrderID:     &order.ID,
			Status:      enums.WalletTransactionStatusRefund,
		}); err != nil {
			return err
		}
	}

	action := enums.StockActionReturn
	if reason == enums.OrderStatusRejected {
		action = enums.StockActionRequestRejectedStockRestored
	}

	for _, item := range order.Items {
		if _, err := s.stocks.ReceiveTx(ctx, tx, stock.ReceiveInput{
			Key: stock.BatchKey{
				ProductID:   item.ProductID,
				VariantID:   item.VariantID,
				OwnerID:     order.SellerID,
				BatchNumber: item.BatchNumber,
			},
			Quantity:        item.Quantity,
			ManufactureDate: item.ManufactureDate,
			ExpiryDate:      item.ExpiryDate,
			Action:          action,
			ReferenceID:     order.ID.String(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) hasRefund(ctx context.Context, orderID uuid.UUID) (bool, error) {
	txns, err := s.wallets.ListTransactionsByOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, txn := range txns {
		if txn.Status == enums.WalletTransactionStatusRefund {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.OrderRequest, error) {
	if input.ResellerID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "reseller id and product id are required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	reseller, err := s.directory.GetUser(ctx, input.ResellerID)
	if err != nil {
		return nil, err
	}
	if reseller.Role != enums.RoleReseller {
		return nil, apperrors.New(apperrors.CodeValidation, "only resellers raise order requests")
	}

	var targetID uuid.UUID
	assignment, err := s.directory.GetStockistAssignment(ctx, reseller.ID)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		targetID = assignment.StockistID
	} else {
		stockist, err := s.directory.GetDefaultStockist(ctx)
		if err != nil {
			return nil, err
		}
		targetID = stockist.ID
	}

	request := &models.OrderRequest{
		ResellerID:   reseller.ID,
		TargetUserID: targetID,
		ProductID:    input.ProductID,
		VariantID:    input.VariantID,
		Quantity:     input.Quantity,
		Status:       enums.OrderRequestStatusPending,
	}

	available, err := s.stocks.Availability(ctx, input.ProductID, input.VariantID, targetID)
	if err != nil {
		return nil, err
	}
	if available < input.Quantity {
		due := time.Now().UTC().Add(s.cfg.TransferGrace)
		request.TransferDueAt = &due
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, s.requestNotification(request, "New order request"))
	return request, nil
}

func (s *service) FlagForTransfer(ctx context.Context, requestID uuid.UUID) error {
	if requestID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "request id is required")
	}

	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotFound, err, "order request not found")
	}
	if request.Status != enums.OrderRequestStatusPending {
		return apperrors.New(apperrors.CodeStateConflict, "only pending requests start the transfer clock")
	}
	if request.TransferDueAt != nil {
		return nil
	}

	due := time.Now().UTC().Add(s.cfg.TransferGrace)
	request.TransferDueAt = &due
	return s.repo.UpdateRequest(ctx, request)
}

// RunAutoTransferSweep retargets pending requests whose grace period lapsed
// to the default stockist and restarts their clock from scratch.
func (s *service) RunAutoTransferSweep(ctx context.Context) (*AutoTransferReport, error) {
	now := time.Now().UTC()
	due, err := s.repo.FindDueRequests(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &AutoTransferReport{Scanned: len(due)}
	if len(due) == 0 {
		return report, nil
	}

	fallback, err := s.directory.GetDefaultStockist(ctx)
	if err != nil {
		return nil, err
	}

	var sweepErr error
	for i := range due {
		request := &due[i]
		if request.TargetUserID == fallback.ID {
			// Already with the default stockist; clear the clock so the
			// sweep does not pick it up again.
			request.TransferDueAt = nil
			if err := s.repo.UpdateRequest(ctx, request); err != nil {
				sweepErr = multierr.Append(sweepErr, fmt.Errorf("request %s: %w", request.ID, err))
				continue
			}
			report.SkippedSame++
			continue
		}

		previousTarget := request.TargetUserID
		request.TargetUserID = fallback.ID
		request.TransferDueAt = nil
		request.Status = enums.OrderRequestStatusPending
		if err := s.repo.UpdateRequest(ctx, request); err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("request %s: %w", request.ID, err))
			continue
		}
		report.Retargeted++

		s.notifier.Notify(ctx, s.requestNotification(request, "Order request transferred"))
		s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  previousTarget,
			Title:   "Order request transferred",
			Message: fmt.Sprintf("Request %s moved to the default stockist", request.ID),
			Type:    enums.NotificationTypeOrder,
		})
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"scanned":    report.Scanned,
		"retargeted": report.Retargeted,
	}), "auto-transfer sweep finished")

	return report, sweepErr
}

func (s *service) requestNotification(request *models.OrderRequest, title string) notifications.NotifyInput {
	return notifications.NotifyInput{
		UserID:  request.TargetUserID,
		Title:   title,
		Message: fmt.Sprintf("Request %s: %d units of product %s", request.ID, request.Quantity, request.ProductID),
		Type:    enums.NotificationTypeOrder,
	}
}
