// Package transfer implements the funds-transfer engine: a linear gate
// sequence that validates a request, atomically moves money between two
// accounts, and appends the ledger entry. Every failure short-circuits with
// no side effects; the engine never retries.
package transfer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/money"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

var (
	// ErrInvalidAmount rejects amounts that are not positive finite decimals
	// or that overflow the representable range.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSelfTransfer rejects transfers where the recipient is the caller.
	ErrSelfTransfer = errors.New("cannot transfer to yourself")
	// ErrSenderNotFound indicates the caller has no account.
	ErrSenderNotFound = errors.New("sender account not found")
	// ErrRecipientNotFound indicates the recipient has no account.
	ErrRecipientNotFound = errors.New("recipient account not found")
	// ErrInsufficientFunds indicates the sender's balance is below the amount.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrInternal covers unexpected store failures. The transfer did not
	// commit; the caller may reissue the whole operation.
	ErrInternal = errors.New("internal error")
)

// Engine orchestrates validation, atomic balance mutation, and ledger append.
type Engine struct {
	store storage.Store
	log   *slog.Logger
}

// New returns an engine bound to the given store.
func New(store storage.Store, log *slog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Transfer moves amountMajor (a decimal major-unit string) from callerID to
// recipientID. The caller identity must already be authenticated. On success
// the returned transaction is the committed ledger entry; on failure nothing
// was committed.
func (e *Engine) Transfer(ctx context.Context, callerID, recipientID int64, amountMajor string) (models.Transaction, error) {
	amount, err := money.ParseMajor(amountMajor)
	if err != nil {
		return models.Transaction{}, ErrInvalidAmount
	}
	if recipientID == callerID {
		return models.Transaction{}, ErrSelfTransfer
	}

	sender, err := e.store.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Transaction{}, ErrSenderNotFound
		}
		return models.Transaction{}, e.internal(err, callerID, recipientID, amount)
	}
	recipient, err := e.store.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Transaction{}, ErrRecipientNotFound
		}
		return models.Transaction{}, e.internal(err, callerID, recipientID, amount)
	}

	// The sufficiency check and both-accounts-exist check are enforced inside
	// the store's atomic transfer, so a concurrent debit between the lookups
	// above and the commit cannot take the balance negative.
	entry, err := e.store.Transfer(ctx, sender.ID, recipient.ID, amount, sender.Name, recipient.Name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientFunds):
			return models.Transaction{}, ErrInsufficientFunds
		case errors.Is(err, storage.ErrNotFound):
			// Users exist but an account row is missing: accounts are created
			// with users in one transaction, so this is store corruption, not
			// a caller mistake.
			return models.Transaction{}, e.internal(err, callerID, recipientID, amount)
		default:
			return models.Transaction{}, e.internal(err, callerID, recipientID, amount)
		}
	}

	e.log.Info("transfer committed",
		"transaction_id", entry.ID,
		"sender_id", entry.SenderID,
		"receiver_id", entry.ReceiverID,
		"amount_minor", entry.Amount,
	)
	return entry, nil
}

func (e *Engine) internal(err error, callerID, recipientID, amount int64) error {
	e.log.Error("transfer failed",
		"error", err,
		"sender_id", callerID,
		"receiver_id", recipientID,
		"amount_minor", amount,
	)
	return ErrInternal
}
