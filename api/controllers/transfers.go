package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dhruvsahani/distrilink-backend/api/responses"
	"github.com/dhruvsahani/distrilink-backend/api/validators"
	"github.com/dhruvsahani/distrilink-backend/internal/transfers"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type createTransferRequest struct {
	RaisedByID     string `json:"raised_by_id" validate:"required,uuid"`
	RaisedToID     string `json:"raised_to_id" validate:"required,uuid"`
	ProductID      string `json:"product_id" validate:"required,uuid"`
	VariantID      string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	BatchNumber    string `json:"batch_number" validate:"required,max=100"`
	NewBatchNumber string `json:"new_batch_number" validate:"omitempty,max=100"`
	Type           string `json:"type" validate:"required"`
}

type transferTransitionRequest struct {
	NewStatus  string `json:"new_status" validate:"required"`
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}

// CreateTransfer raises a return/replacement request.
func CreateTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTransferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raisedBy, err := validators.ParsePathUUID(req.RaisedByID, "raised_by_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		raisedTo, err := validators.ParsePathUUID(req.RaisedToID, "raised_to_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transferType, err := enums.ParseTransferRequestType(strings.TrimSpace(req.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer type"))
			return
		}

		input := transfers.CreateInput{
			RaisedByID:  raisedBy,
			RaisedToID:  raisedTo,
			ProductID:   productID,
			Quantity:    req.Quantity,
			BatchNumber: strings.TrimSpace(req.BatchNumber),
			Type:        transferType,
		}
		if req.VariantID != "" {
			variantID, err := validators.ParsePathUUID(req.VariantID, "variant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.VariantID = &variantID
		}
		if newNumber := strings.TrimSpace(req.NewBatchNumber); newNumber != "" {
			input.NewBatchNumber = &newNumber
		}

		request, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// GetTransfer returns one transfer request.
func GetTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "requestID"), "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		request, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListTransfers returns every transfer request raised by or toward a user.
func ListTransfers(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TransitionTransfer moves a transfer request along its state machine.
func TransitionTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "requestID"), "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transferTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseTransferRequestStatus(strings.TrimSpace(req.NewStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transfer status"))
			return
		}

		request, err := svc.Transition(r.Context(), transfers.TransitionInput{
			RequestID:  requestID,
			NewStatus:  status,
			AdminNotes: strings.TrimSpace(req.AdminNotes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
