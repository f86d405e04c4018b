package dto

import "encoding/json"

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TransferRequest carries the recipient and a major-unit decimal amount.
// The amount is kept as json.Number so no float conversion happens before
// money.ParseMajor sees the raw digits.
type TransferRequest struct {
	To     int64       `json:"to"`
	Amount json.Number `json:"amount"`
}

// UpdateProfileRequest updates only the fields that are present.
type UpdateProfileRequest struct {
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}
