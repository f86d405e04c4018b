package models

import "time"

// Account holds a user's balance in minor currency units (paise). Exactly one
// account exists per user, and the balance is never negative.
type Account struct {
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
