package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/payflowhq/payflow-backend/internal/http/respond"
	"github.com/payflowhq/payflow-backend/internal/middleware"
	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/storage/memory"
	"github.com/payflowhq/payflow-backend/internal/transfer"
)

func setupTransferTest(t *testing.T) (*TransferHandler, *memory.Store, models.User, models.User) {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := transfer.New(store, logger)

	sender, err := store.CreateUser(context.Background(), models.User{Email: "s@x.com", Name: "Sender"}, 10000, "INR")
	require.NoError(t, err)
	receiver, err := store.CreateUser(context.Background(), models.User{Email: "r@x.com", Name: "Receiver"}, 0, "INR")
	require.NoError(t, err)

	return NewTransferHandler(engine), store, sender, receiver
}

func doTransfer(t *testing.T, h *TransferHandler, callerID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transfer", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), callerID))
	rec := httptest.NewRecorder()
	h.Transfer(rec, req)
	return rec
}

func TestTransferHandlerSuccess(t *testing.T) {
	h, store, sender, receiver := setupTransferTest(t)

	rec := doTransfer(t, h, sender.ID, `{"to": 2, "amount": 30.00}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "transfer successful", env.Message)

	senderAcc, _ := store.GetAccount(context.Background(), sender.ID)
	receiverAcc, _ := store.GetAccount(context.Background(), receiver.ID)
	require.Equal(t, int64(7000), senderAcc.Balance)
	require.Equal(t, int64(3000), receiverAcc.Balance)
}

func TestTransferHandlerInternalErrorIsGeneric(t *testing.T) {
	h, store, sender, _ := setupTransferTest(t)
	store.FailCredit = func(int64) error { return errors.New("disk on fire: /var/lib/pg/base corrupt") }

	rec := doTransfer(t, h, sender.ID, `{"to": 2, "amount": 30.00}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "internal server error", env.Message)
	require.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestTransferHandlerBusinessFailuresAreSpecific(t *testing.T) {
	h, _, sender, _ := setupTransferTest(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"insufficient", `{"to": 2, "amount": 500.00}`, transfer.ErrInsufficientFunds.Error()},
		{"self", `{"to": 1, "amount": 5}`, transfer.ErrSelfTransfer.Error()},
		{"unknown recipient", `{"to": 77, "amount": 5}`, transfer.ErrRecipientNotFound.Error()},
		{"bad amount", `{"to": 2, "amount": "0"}`, transfer.ErrInvalidAmount.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doTransfer(t, h, sender.ID, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var env respond.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.Equal(t, tc.want, env.Message)
		})
	}
}

func TestTransferHandlerRejectsMalformedJSON(t *testing.T) {
	h, _, sender, _ := setupTransferTest(t)
	rec := doTransfer(t, h, sender.ID, `{"to": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
