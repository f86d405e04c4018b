package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/money"
	"github.com/payflowhq/payflow-backend/internal/models/dto"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

// TransactionsHandler serves the caller's transfer history.
type TransactionsHandler struct {
	store storage.LedgerStore
	log   *slog.Logger
}

// NewTransactionsHandler constructs the handler.
func NewTransactionsHandler(store storage.LedgerStore, log *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// List returns ledger entries involving the caller, newest first, each
// labelled sent or received from the caller's perspective.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.store.ListByParticipant(r.Context(), userID)
	if err != nil {
		h.log.Error("list transactions failed", "error", err, "user_id", userID)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]dto.TransactionView, 0, len(entries))
	for _, t := range entries {
		view := dto.TransactionView{
			ID:        t.ID,
			Amount:    money.FormatMinor(t.Amount),
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		}
		if t.SenderID == userID {
			view.Type = "sent"
			view.UserID = t.ReceiverID
			view.UserName = t.ReceiverName
		} else {
			view.Type = "received"
			view.UserID = t.SenderID
			view.UserName = t.SenderName
		}
		views = append(views, view)
	}
	respond.JSON(w, http.StatusOK, "ok", dto.TransactionsResponse{Transactions: views})
}
