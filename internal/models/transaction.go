package models

import "time"

// Transaction is one completed transfer. Rows are written once by the
// transfer engine and never updated. Participant names are snapshotted at
// transfer time so later renames do not rewrite history.
type Transaction struct {
	ID           int64     `json:"id"`
	Amount       int64     `json:"amount"`
	SenderID     int64     `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	ReceiverID   int64     `json:"receiver_id"`
	ReceiverName string    `json:"receiver_name"`
	CreatedAt    time.Time `json:"created_at"`
}
