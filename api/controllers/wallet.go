package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dhruvsahani/distrilink-backend/api/responses"
	"github.com/dhruvsahani/distrilink-backend/api/validators"
	"github.com/dhruvsahani/distrilink-backend/internal/wallet"
	pkgerrors "github.com/dhruvsahani/distrilink-backend/pkg/errors"
	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
	"github.com/dhruvsahani/distrilink-backend/pkg/pagination"
)

type walletEntryRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"max=500"`
	OrderID     string `json:"order_id" validate:"omitempty,uuid"`
}

func (req walletEntryRequest) toInput() (wallet.EntryInput, error) {
	userID, err := validators.ParsePathUUID(req.UserID, "user_id")
	if err != nil {
		return wallet.EntryInput{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return wallet.EntryInput{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string").
			WithDetails(map[string]any{"field": "amount"})
	}
	input := wallet.EntryInput{
		UserID:      userID,
		Amount:      amount,
		Description: strings.TrimSpace(req.Description),
	}
	if req.OrderID != "" {
		orderID, err := validators.ParsePathUUID(req.OrderID, "order_id")
		if err != nil {
			return wallet.EntryInput{}, err
		}
		input.OrderID = &orderID
	}
	return input, nil
}

// WalletCredit adds funds to a user's wallet.
func WalletCredit(wallets wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req walletEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := wallets.EnsureWallet(r.Context(), input.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := wallets.Credit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// WalletDebit removes funds, failing when the balance would go negative.
func WalletDebit(wallets wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req walletEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := wallets.Debit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// WalletBalance returns the wallet row for a user.
func WalletBalance(wallets wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := wallets.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// WalletTransactions returns a cursor page of a user's wallet history.
func WalletTransactions(wallets wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		txns, next, err := wallets.ListTransactions(r.Context(), userID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"transactions": txns,
			"next_cursor":  next,
		})
	}
}
