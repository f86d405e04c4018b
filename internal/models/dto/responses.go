package dto

// UserSummary is the public view of a user exposed to other users.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// TransactionView is one ledger entry from the caller's perspective.
type TransactionView struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"` // "sent" or "received"
	Amount    string `json:"amount"`
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	CreatedAt string `json:"createdAt"`
}

type TransactionsResponse struct {
	Transactions []TransactionView `json:"transactions"`
}
