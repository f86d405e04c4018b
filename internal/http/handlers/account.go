package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/money"
	"github.com/payflowhq/payflow-backend/internal/models/dto"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

// AccountHandler serves balance reads for the authenticated user.
type AccountHandler struct {
	store storage.AccountStore
	log   *slog.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(store storage.AccountStore, log *slog.Logger) *AccountHandler {
	return &AccountHandler{store: store, log: log}
}

// Balance returns the caller's balance in major units.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.store.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error("get account failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, "ok", dto.BalanceResponse{
		Balance: money.FormatMinor(account.Balance),
	})
}
