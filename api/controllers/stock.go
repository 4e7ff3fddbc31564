package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/api/responses"
	"github.com/dhruvsahani/distrilink-backend/api/validators"
	"github.com/dhruvsahani/distrilink-backend/internal/expiry"
	"github.com/dhruvsahani/distrilink-backend/internal/stock"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type stockReceiveRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	VariantID       string `json:"variant_id" validate:"omitempty,uuid"`
	OwnerID         string `json:"owner_id" validate:"required,uuid"`
	BatchNumber     string `json:"batch_number" validate:"required,max=100"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
	ManufactureDate string `json:"manufacture_date" validate:"omitempty"`
	ExpiryDate      string `json:"expiry_date" validate:"omitempty"`
	ReferenceID     string `json:"reference_id" validate:"max=100"`
}

type stockAdjustRequest struct {
	BatchID     string `json:"batch_id" validate:"required,uuid"`
	Delta       int    `json:"delta" validate:"required"`
	Action      string `json:"action" validate:"required"`
	ReferenceID string `json:"reference_id" validate:"max=100"`
}

// ReceiveStock adds quantity into an owner's batch, creating it on first
// receipt.
func ReceiveStock(stocks stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockReceiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID, err := validators.ParsePathUUID(req.OwnerID, "owner_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := stock.ReceiveInput{
			Key: stock.BatchKey{
				ProductID:   productID,
				OwnerID:     ownerID,
				BatchNumber: strings.TrimSpace(req.BatchNumber),
			},
			Quantity:    req.Quantity,
			ReferenceID: strings.TrimSpace(req.ReferenceID),
		}
		if req.VariantID != "" {
			variantID, err := validators.ParsePathUUID(req.VariantID, "variant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Key.VariantID = &variantID
		}
		if req.ManufactureDate != "" {
			mfg, err := parseDate(req.ManufactureDate, "manufacture_date")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ManufactureDate = mfg
		}
		if req.ExpiryDate != "" {
			exp, err := parseDate(req.ExpiryDate, "expiry_date")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ExpiryDate = exp
		}

		batch, err := stocks.Receive(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

// AdjustStock applies a signed delta against a known batch.
func AdjustStock(stocks stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batchID, err := validators.ParsePathUUID(req.BatchID, "batch_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := enums.ParseStockAction(strings.TrimSpace(req.Action))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock action"))
			return
		}

		batch, err := stocks.Adjust(r.Context(), stock.AdjustInput{
			BatchID:     batchID,
			Delta:       req.Delta,
			Action:      action,
			ReferenceID: strings.TrimSpace(req.ReferenceID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// ListBatches returns an owner's batches, optionally filtered by product.
func ListBatches(stocks stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := validators.ParsePathUUID(chi.URLParam(r, "ownerID"), "ownerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var productID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
			parsed, err := validators.ParsePathUUID(raw, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			productID = &parsed
		}
		batches, err := stocks.ListBatches(r.Context(), ownerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batches)
	}
}

// StockHistory returns the append-only adjustment trail for a batch.
func StockHistory(stocks stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := validators.ParsePathUUID(chi.URLParam(r, "batchID"), "batchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := stocks.History(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// ListExpiryTrackers returns an owner's expiry watchlist.
func ListExpiryTrackers(expiries expiry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := validators.ParsePathUUID(chi.URLParam(r, "ownerID"), "ownerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unresolvedOnly, err := validators.ParseQueryBool(r, "unresolved_only", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		trackers, err := expiries.List(r.Context(), ownerID, unresolvedOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trackers)
	}
}

func parseDate(raw, field string) (time.Time, error) {
	value, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
