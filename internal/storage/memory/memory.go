// Package memory implements storage.Store with mutex-guarded maps. It backs
// unit tests and database-less local runs with the same semantics as the
// Postgres store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps all state in memory. A single mutex covers every operation, so
// transfers are trivially atomic: either all three mutations happen under the
// lock or none do.
type Store struct {
	mu           sync.Mutex
	users        map[int64]models.User
	accounts     map[int64]*models.Account
	transactions []models.Transaction
	nextUserID   int64
	nextTxID     int64

	// FailCredit, when set, is invoked after the debit has been applied and
	// before the credit. Returning an error aborts the transfer; tests use
	// this to check that the debit is rolled back.
	FailCredit func(toID int64) error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[int64]models.User),
		accounts:   make(map[int64]*models.Account),
		nextUserID: 1,
		nextTxID:   1,
	}
}

// CreateUser inserts the user and a seeded account.
func (s *Store) CreateUser(_ context.Context, user models.User, initialBalance int64, currency string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}

	now := time.Now()
	user.ID = s.nextUserID
	s.nextUserID++
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	s.accounts[user.ID] = &models.Account{
		UserID:    user.ID,
		Balance:   initialBalance,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return user, nil
}

// FindByEmail fetches a user by email, matched case-insensitively.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if strings.ToLower(user.Email) == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByID fetches a user by id.
func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// ListOthers returns every user except excludeID, ordered by id.
func (s *Store) ListOthers(_ context.Context, excludeID int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for id, user := range s.users {
		if id != excludeID {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// UpdateUser applies the non-nil fields of update.
func (s *Store) UpdateUser(_ context.Context, id int64, update storage.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return user, nil
}

// GetAccount fetches the account owned by userID.
func (s *Store) GetAccount(_ context.Context, userID int64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return *acc, nil
}

// Transfer applies the conditional debit, credit, and ledger append under one
// lock hold.
func (s *Store) Transfer(_ context.Context, fromID, toID, amount int64, senderName, receiverName string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[fromID]
	if !ok {
		return models.Transaction{}, fmt.Errorf("sender account %d: %w", fromID, storage.ErrNotFound)
	}
	to, ok := s.accounts[toID]
	if !ok {
		return models.Transaction{}, fmt.Errorf("receiver account %d: %w", toID, storage.ErrNotFound)
	}
	if from.Balance < amount {
		return models.Transaction{}, storage.ErrInsufficientFunds
	}

	now := time.Now()
	from.Balance -= amount

	if s.FailCredit != nil {
		if err := s.FailCredit(toID); err != nil {
			from.Balance += amount
			return models.Transaction{}, err
		}
	}

	to.Balance += amount
	from.UpdatedAt = now
	to.UpdatedAt = now

	entry := models.Transaction{
		ID:           s.nextTxID,
		Amount:       amount,
		SenderID:     fromID,
		SenderName:   senderName,
		ReceiverID:   toID,
		ReceiverName: receiverName,
		CreatedAt:    now,
	}
	s.nextTxID++
	s.transactions = append(s.transactions, entry)
	return entry, nil
}

// ListByParticipant returns ledger entries touching userID, newest first with
// ties broken by id descending.
func (s *Store) ListByParticipant(_ context.Context, userID int64) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.Transaction
	for _, t := range s.transactions {
		if t.SenderID == userID || t.ReceiverID == userID {
			entries = append(entries, t)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}
