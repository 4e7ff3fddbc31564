package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dhruvsahani/distrilink-backend/api/responses"
	"github.com/dhruvsahani/distrilink-backend/api/validators"
	"github.com/dhruvsahani/distrilink-backend/internal/orders"
	"github.com/dhruvsahani/distrilink-backend/pkg/enums"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

type bulkOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type bulkOrderRequest struct {
	BuyerID string                 `json:"buyer_id" validate:"required,uuid"`
	Items   []bulkOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderTransitionRequest struct {
	ActorID   string `json:"actor_id" validate:"required,uuid"`
	NewStatus string `json:"new_status" validate:"required"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// CreateBulkOrder places an atomic multi-line order for a buyer.
func CreateBulkOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyerID, err := validators.ParsePathUUID(req.BuyerID, "buyer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateBulkOrderInput{BuyerID: buyerID}
		for _, item := range req.Items {
			productID, err := validators.ParsePathUUID(item.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			line := orders.BulkOrderItemInput{ProductID: productID, Quantity: item.Quantity}
			if item.VariantID != "" {
				variantID, err := validators.ParsePathUUID(item.VariantID, "variant_id")
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				line.VariantID = &variantID
			}
			input.Items = append(input.Items, line)
		}

		order, err := svc.CreateBulkOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrder returns one order with its items.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// TransitionOrder moves an order along its lifecycle.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := validators.ParsePathUUID(req.ActorID, "actor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(req.NewStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		history, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID:   orderID,
			ActorID:   actorID,
			NewStatus: status,
			Notes:     strings.TrimSpace(req.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// OrderHistory returns the full audit trail for an order.
func OrderHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := svc.History(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

type orderRequestBody struct {
	ResellerID string `json:"reseller_id" validate:"required,uuid"`
	ProductID  string `json:"product_id" validate:"required,uuid"`
	VariantID  string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest raises a reseller restock request toward a stockist.
func CreateOrderRequest(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequestBody
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resellerID, err := validators.ParsePathUUID(req.ResellerID, "reseller_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.CreateRequestInput{
			ResellerID: resellerID,
			ProductID:  productID,
			Quantity:   req.Quantity,
		}
		if req.VariantID != "" {
			variantID, err := validators.ParsePathUUID(req.VariantID, "variant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.VariantID = &variantID
		}

		request, err := svc.CreateRequest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// FlagOrderRequestForTransfer starts the auto-transfer clock on a pending
// request.
func FlagOrderRequestForTransfer(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "requestID"), "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.FlagForTransfer(r.Context(), requestID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]uuid.UUID{"request_id": requestID})
	}
}
