package storage

import (
	"context"
	"errors"

	"github.com/payflowhq/payflow-backend/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInsufficientFunds indicates a conditional debit that would have taken a
// balance negative. No mutation happens when it is returned.
var ErrInsufficientFunds = errors.New("insufficient funds")

// UserUpdate carries the optional fields of a profile update. Nil means
// leave the column untouched.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
}

// UserStore captures persistence operations on user identities.
type UserStore interface {
	// CreateUser inserts the user and its account as one atomic unit. The
	// account starts at initialBalance minor units.
	CreateUser(ctx context.Context, user models.User, initialBalance int64, currency string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	// ListOthers returns every user except excludeID.
	ListOthers(ctx context.Context, excludeID int64) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (models.User, error)
}

// AccountStore owns balance reads and the atomic transfer primitive.
type AccountStore interface {
	GetAccount(ctx context.Context, userID int64) (models.Account, error)
	// Transfer debits fromID, credits toID, and appends the ledger entry as
	// one durable unit. The debit is conditional: if the sender's balance is
	// below amount, ErrInsufficientFunds is returned and nothing changes.
	// Either account missing yields ErrNotFound. Partial application is
	// never observable.
	Transfer(ctx context.Context, fromID, toID, amount int64, senderName, receiverName string) (models.Transaction, error)
}

// LedgerStore reads the append-only transfer history.
type LedgerStore interface {
	// ListByParticipant returns entries where userID is sender or receiver,
	// newest first, ties broken by id descending.
	ListByParticipant(ctx context.Context, userID int64) ([]models.Transaction, error)
}

// Store is the full persistence surface the server wires together.
type Store interface {
	UserStore
	AccountStore
	LedgerStore
}
