package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/models/dto"
	"github.com/payflowhq/payflow-backend/internal/transfer"
)

// TransferHandler translates HTTP transfer requests into engine calls and
// maps engine errors onto statuses. Business-rule failures carry their
// specific message; internal failures are reported generically.
type TransferHandler struct {
	engine *transfer.Engine
}

// NewTransferHandler constructs the handler.
func NewTransferHandler(engine *transfer.Engine) *TransferHandler {
	return &TransferHandler{engine: engine}
}

// Transfer moves funds from the caller to the requested recipient.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	entry, err := h.engine.Transfer(r.Context(), userID, req.To, req.Amount.String())
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidAmount),
			errors.Is(err, transfer.ErrSelfTransfer),
			errors.Is(err, transfer.ErrSenderNotFound),
			errors.Is(err, transfer.ErrRecipientNotFound),
			errors.Is(err, transfer.ErrInsufficientFunds):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respond.JSON(w, http.StatusOK, "transfer successful", entry)
}
