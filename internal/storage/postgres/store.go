package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users, accounts, and the
// transfer ledger.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (lower(email));`,
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id BIGINT PRIMARY KEY REFERENCES users(id),
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			currency TEXT NOT NULL DEFAULT 'INR',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			amount BIGINT NOT NULL CHECK (amount > 0),
			sender_id BIGINT NOT NULL REFERENCES users(id),
			sender_name TEXT NOT NULL,
			receiver_id BIGINT NOT NULL REFERENCES users(id),
			receiver_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (sender_id <> receiver_id)
		);`,
		`CREATE INDEX IF NOT EXISTS transactions_sender_idx ON transactions (sender_id);`,
		`CREATE INDEX IF NOT EXISTS transactions_receiver_idx ON transactions (receiver_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts the user row and its account row in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User, initialBalance int64, currency string) (models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (email, name, password_hash)
		VALUES (lower($1), $2, $3)
		RETURNING id, email, name, password_hash, created_at, updated_at;
	`
	created, err := scanUser(tx.QueryRow(ctx, insertUser, user.Email, user.Name, user.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}

	const insertAccount = `
		INSERT INTO accounts (user_id, balance, currency)
		VALUES ($1, $2, $3);
	`
	if _, err := tx.Exec(ctx, insertAccount, created.ID, initialBalance, currency); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email, matched case-insensitively.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE email = lower($1);
	`
	return scanUser(s.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// ListOthers returns every user except excludeID, oldest first.
func (s *Store) ListOthers(ctx context.Context, excludeID int64) ([]models.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE id <> $1
		ORDER BY id;
	`
	rows, err := s.pool.Query(ctx, query, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser applies the non-nil fields of update to the user row.
func (s *Store) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name),
		    password_hash = COALESCE($3, password_hash),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, name, password_hash, created_at, updated_at;
	`
	return scanUser(s.pool.QueryRow(ctx, query, id, update.Name, update.PasswordHash))
}

// GetAccount fetches the account owned by userID.
func (s *Store) GetAccount(ctx context.Context, userID int64) (models.Account, error) {
	const query = `
		SELECT user_id, balance, currency, created_at, updated_at
		FROM accounts
		WHERE user_id = $1;
	`
	var acc models.Account
	err := s.pool.QueryRow(ctx, query, userID).
		Scan(&acc.UserID, &acc.Balance, &acc.Currency, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, err
	}
	return acc, nil
}

// Transfer moves amount from fromID to toID and appends the ledger entry, all
// in one transaction. Both account rows are locked in ascending user_id order
// so opposite-direction transfers between the same pair cannot deadlock.
func (s *Store) Transfer(ctx context.Context, fromID, toID, amount int64, senderName, receiverName string) (models.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	const lockAccounts = `
		SELECT user_id, balance
		FROM accounts
		WHERE user_id = ANY($1::bigint[])
		ORDER BY user_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockAccounts, []int64{fromID, toID})
	if err != nil {
		return models.Transaction{}, err
	}
	balances := make(map[int64]int64, 2)
	for rows.Next() {
		var id, balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			rows.Close()
			return models.Transaction{}, err
		}
		balances[id] = balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Transaction{}, err
	}

	senderBalance, ok := balances[fromID]
	if !ok {
		return models.Transaction{}, fmt.Errorf("sender account %d: %w", fromID, storage.ErrNotFound)
	}
	if _, ok := balances[toID]; !ok {
		return models.Transaction{}, fmt.Errorf("receiver account %d: %w", toID, storage.ErrNotFound)
	}
	if senderBalance < amount {
		return models.Transaction{}, storage.ErrInsufficientFunds
	}

	const debit = `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1;
	`
	tag, err := tx.Exec(ctx, debit, amount, fromID)
	if err != nil {
		return models.Transaction{}, err
	}
	if tag.RowsAffected() != 1 {
		return models.Transaction{}, storage.ErrInsufficientFunds
	}

	const credit = `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2;
	`
	if _, err := tx.Exec(ctx, credit, amount, toID); err != nil {
		return models.Transaction{}, err
	}

	const appendEntry = `
		INSERT INTO transactions (amount, sender_id, sender_name, receiver_id, receiver_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`
	entry := models.Transaction{
		Amount:       amount,
		SenderID:     fromID,
		SenderName:   senderName,
		ReceiverID:   toID,
		ReceiverName: receiverName,
	}
	if err := tx.QueryRow(ctx, appendEntry, amount, fromID, senderName, toID, receiverName).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return models.Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Transaction{}, err
	}
	return entry, nil
}

// ListByParticipant returns ledger entries touching userID, newest first.
func (s *Store) ListByParticipant(ctx context.Context, userID int64) ([]models.Transaction, error) {
	const query = `
		SELECT id, amount, sender_id, sender_name, receiver_id, receiver_name, created_at
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.SenderID, &t.SenderName, &t.ReceiverID, &t.ReceiverName, &t.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
