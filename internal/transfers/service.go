package transfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhruvsahani/distrilink-backend/internal/directory"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/notifications"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/pkg/db"
	"github.com/dhruvsahani/distrilink-backend/pkg/db/models"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	apperrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// Service drives the return/replacement lifecycle. Creation deducts the
// returned quantity up front; the terminal transitions compensate stock
// exactly once, guarded by the request's boolean flags.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.StockTransferRequest, error)
	Get(ctx context.Context, requestID uuid.UUID) (*models.StockTransferRequest, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.StockTransferRequest, error)
	Transition(ctx context.Context, input TransitionInput) (*models.StockTransferRequest, error)
}

// CreateInput raises one return/replacement request against a batch the
// raiser owns.
type CreateInput struct {
	RaisedByID     uuid.UUID                 `json:"raised_by_id"`
	RaisedToID     uuid.UUID                 `json:"raised_to_id"`
	ProductID      uuid.UUID                 `json:"product_id"`
	VariantID      *uuid.UUID                `json:"variant_id"`
	Quantity       int                       `json:"quantity"`
	BatchNumber    string                    `json:"batch_number"`
	NewBatchNumber *string                   `json:"new_batch_number"`
	Type           enums.TransferRequestType `json:"type"`
}

// TransitionInput moves a transfer request to a new status.
type TransitionInput struct {
	RequestID  uuid.UUID                   `json:"request_id"`
	NewStatus  enums.TransferRequestStatus `json:"new_status"`
	AdminNotes string                      `json:"admin_notes"`
}

// nextStatus is the single forward step of the replacement chain. Rejection
// is only reachable from pending.
var nextStatus = map[enums.TransferRequestStatus]enums.TransferRequestStatus{
	enums.TransferRequestStatusPending:    enums.TransferRequestStatusApproved,
	enums.TransferRequestStatusApproved:   enums.TransferRequestStatusInTransit,
	enums.TransferRequestStatusInTransit:  enums.TransferRequestStatusDispatched,
	enums.TransferRequestStatusDispatched: enums.TransferRequestStatusReceived,
}

func transitionAllowed(from, to enums.TransferRequestStatus) bool {
	// Re-delivering a settled status is allowed; the compensation guards
	// below make it a no-op.
	if from == to {
		return from.IsTerminal()
	}
	if from.IsTerminal() {
		return false
	}
	if to == enums.TransferRequestStatusRejected {
		return from == enums.TransferRequestStatusPending
	}
	return nextStatus[from] == to
}

type service struct {
	client    *db.Client
	repo      Repository
	stocks    stock.Service
	expiries  expiry.Service
	directory directory.Service
	notifier  notifications.Service
	logg      *logger.Logger
}

// NewService wires the transfer service with its collaborators.
func NewService(
	client *db.Client,
	repo Repository,
	stocks stock.Service,
	expiries expiry.Service,
	directorySvc directory.Service,
	notifier notifications.Service,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transfer repository required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if expiries == nil {
		return nil, fmt.Errorf("expiry service required")
	}
	if directorySvc == nil {
		return nil, fmt.Errorf("directory service required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:    client,
		repo:      repo,
		stocks:    stocks,
		expiries:  expiries,
		directory: directorySvc,
		notifier:  notifier,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.StockTransferRequest, error) {
	if input.RaisedByID == uuid.Nil || input.RaisedToID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "raised-by and raised-to user ids are required")
	}
	if input.ProductID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}
	if input.BatchNumber == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "batch number is required")
	}
	if !input.Type.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid transfer type %q", input.Type))
	}

	raiser, err := s.directory.GetUser(ctx, input.RaisedByID)
	if err != nil {
		return nil, err
	}
	if _, err := s.directory.GetUser(ctx, input.RaisedToID); err != nil {
		return nil, err
	}

	request := &models.StockTransferRequest{
		RequestID:      newRequestCode(),
		Type:           input.Type,
		Status:         enums.TransferRequestStatusPending,
		RaisedByID:     raiser.ID,
		RaisedToID:     input.RaisedToID,
		ProductID:      input.ProductID,
		VariantID:      input.VariantID,
		Quantity:       input.Quantity,
		BatchNumber:    input.BatchNumber,
		NewBatchNumber: input.NewBatchNumber,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		batch, err := s.stocks.GetBatchTx(ctx, tx, stock.BatchKey{
			ProductID:   input.ProductID,
			VariantID:   input.VariantID,
			OwnerID:     raiser.ID,
			BatchNumber: input.BatchNumber,
		})
		if err != nil {
			return err
		}

		// The returned units leave the raiser's inventory the moment the
		// request is raised. Rejection restores them later.
		if _, err := s.stocks.AdjustTx(ctx, tx, stock.AdjustInput{
			BatchID:     batch.ID,
			Delta:       -input.Quantity,
			Action:      enums.StockActionReplacementStockDeducted,
			ReferenceID: request.RequestID,
		}); err != nil {
			return err
		}
		request.OriginalStockDeducted = true

		return s.repo.WithTx(tx).Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  request.RaisedToID,
		Title:   "Stock transfer request raised",
		Message: fmt.Sprintf("Request %s: %d units of batch %s (%s)", request.RequestID, request.Quantity, request.BatchNumber, request.Type),
		Type:    enums.NotificationTypeTransfer,
	})

	return request, nil
}

func (s *service) Get(ctx context.Context, requestID uuid.UUID) (*models.StockTransferRequest, error) {
	if requestID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, err, "transfer request not found")
	}
	return request, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.StockTransferRequest, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.StockTransferRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "request id is required")
	}
	if !input.NewStatus.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid transfer status %q", input.NewStatus))
	}

	request, err := s.Get(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(request.Status, input.NewStatus) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot move transfer request from %s to %s", request.Status, input.NewStatus)).
			WithDetails(map[string]string{
				"current":   request.Status.String(),
				"requested": input.NewStatus.String(),
			})
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if request.Status != input.NewStatus {
			rows, err := repo.UpdateStatus(ctx, request.ID, request.Status, input.NewStatus, input.AdminNotes)
			if err != nil {
				return err
			}
			// A concurrent transition won the race; the caller can re-read
			// and retry against the fresh status.
			if rows == 0 {
				return apperrors.New(apperrors.CodeConflict, "transfer status changed concurrently")
			}
			request.Status = input.NewStatus
			if input.AdminNotes != "" {
				request.AdminNotes = input.AdminNotes
			}
		}

		switch input.NewStatus {
		case enums.TransferRequestStatusReceived:
			return s.settleReceived(ctx, tx, repo, request)
		case enums.TransferRequestStatusRejected:
			return s.settleRejected(ctx, tx, repo, request)
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, request)
	return request, nil
}

// settleReceived credits the replacement stock back into the raiser's batch,
// renaming it when a new batch number was supplied, and resolves the matching
// expiry tracker. The replacement_stock_added flag makes replays no-ops.
func (s *service) settleReceived(ctx context.Context, tx *gorm.DB, repo Repository, request *models.StockTransferRequest) error {
	if request.ReplacementStockAdded {
		return nil
	}

	batch, err := s.stocks.GetBatchTx(ctx, tx, stock.BatchKey{
		ProductID:   request.ProductID,
		VariantID:   request.VariantID,
		OwnerID:     request.RaisedByID,
		BatchNumber: request.BatchNumber,
	})
	if err != nil {
		// The batch disappeared between raising and completing the request.
		// Keep the status change but leave the request unresolved for manual
		// follow-up.
		if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeNotFound {
			s.logg.Error(ctx, fmt.Sprintf("transfer %s: batch %s missing at compensation", request.RequestID, request.BatchNumber), err)
			return nil
		}
		return err
	}

	if request.NewBatchNumber != nil && *request.NewBatchNumber != "" && *request.NewBatchNumber != batch.BatchNumber {
		if err := s.stocks.RenameBatchTx(ctx, tx, batch.ID, *request.NewBatchNumber); err != nil {
			return err
		}
	}

	if _, err := s.stocks.AdjustTx(ctx, tx, stock.AdjustInput{
		BatchID:     batch.ID,
		Delta:       request.Quantity,
		Action:      enums.StockActionExchangedStockAdded,
		ReferenceID: request.RequestID,
	}); err != nil {
		return err
	}

	now := time.Now().UTC()
	request.ReplacementStockAdded = true
	request.IsResolved = true
	request.CompletedAt = &now
	if err := repo.Save(ctx, request); err != nil {
		return err
	}

	return s.expiries.ResolveTx(ctx, tx, batch.ID, request.RaisedByID)
}

// settleRejected puts the originally deducted units back into the raiser's
// batch. Resolution flags guard against replayed rejections.
func (s *service) settleRejected(ctx context.Context, tx *gorm.DB, repo Repository, request *models.StockTransferRequest) error {
	if request.IsResolved || request.ReplacementStockAdded {
		return nil
	}

	batch, err := s.stocks.GetBatchTx(ctx, tx, stock.BatchKey{
		ProductID:   request.ProductID,
		VariantID:   request.VariantID,
		OwnerID:     request.RaisedByID,
		BatchNumber: request.BatchNumber,
	})
	if err != nil {
		if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeNotFound {
			s.logg.Error(ctx, fmt.Sprintf("transfer %s: batch %s missing at compensation", request.RequestID, request.BatchNumber), err)
			return nil
		}
		return err
	}

	if _, err := s.stocks.AdjustTx(ctx, tx, stock.AdjustInput{
		BatchID:     batch.ID,
		Delta:       request.Quantity,
		Action:      enums.StockActionRequestRejectedStockRestored,
		ReferenceID: request.RequestID,
	}); err != nil {
		return err
	}

	request.OriginalStockDeducted = true
	request.IsResolved = true
	return repo.Save(ctx, request)
}

func (s *service) notifyTransition(ctx context.Context, request *models.StockTransferRequest) {
	message := fmt.Sprintf("Request %s is now %s", request.RequestID, request.Status)
	for _, userID := range []uuid.UUID{request.RaisedByID, request.RaisedToID} {
		s.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  userID,
			Title:   "Stock transfer " + request.Status.String(),
			Message: message,
			Type:    enums.NotificationTypeTransfer,
		})
	}
}

func newRequestCode() string {
	return "STR-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
