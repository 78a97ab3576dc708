package handler

// CreateAccountRequest represents a request to open a new account
type CreateAccountRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	AccountNumber  string `json:"account_number" binding:"required"`
	RoutingNumber  string `json:"routing_number" binding:"required"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	Balance       int64  `json:"balance"`
	HasPin        bool   `json:"has_pin"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// TransactionResponse represents a feed transaction in API responses
type TransactionResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Description  string `json:"description"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	BalanceAfter int64  `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// TransactionListResponse represents a page of the transaction feed
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// SendCodeRequest asks for a login verification code
type SendCodeRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Email  string `json:"email" binding:"required,email"`
}

// SendCodeResponse reports the outcome of a send, including the remaining
// cooldown when the request was a no-op
type SendCodeResponse struct {
	Success           bool  `json:"success"`
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}

// VerifyCodeRequest submits a login verification code
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyCodeResponse reports whether the code was accepted
type VerifyCodeResponse struct {
	Success bool `json:"success"`
}

// SetupPinRequest sets the transfer PIN
type SetupPinRequest struct {
	Pin     string `json:"pin" binding:"required"`
	Confirm string `json:"confirm" binding:"required"`
}

// VerifyPinRequest checks the transfer PIN
type VerifyPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// VerifyPinResponse reports whether the PIN matched
type VerifyPinResponse struct {
	Valid bool `json:"valid"`
}

// SendMoneyRequest submits an outgoing transfer. Pin carries the gate entry;
// Confirm is only needed when the account has no PIN on file yet.
type SendMoneyRequest struct {
	AccountID     string `json:"account_id" binding:"required,uuid"`
	RecipientName string `json:"recipient_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	Amount        int64  `json:"amount"`
	Pin           string `json:"pin" binding:"required"`
	Confirm       string `json:"confirm,omitempty"`
}

// AddMoneyRequest submits a deposit
type AddMoneyRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    int64  `json:"amount"`
	Source    string `json:"source" binding:"required,oneof=bank card"`
}

// RequestMoneyRequest creates a payment request link
type RequestMoneyRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note,omitempty"`
}

// RequestMoneyResponse carries the shareable pay link
type RequestMoneyResponse struct {
	Link string `json:"link"`
}

// TransferStatusResponse reports the final state of a transfer flow
type TransferStatusResponse struct {
	Status string `json:"status"`
}

// CreateGoalRequest creates a savings goal
type CreateGoalRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetAmount int64  `json:"target_amount" binding:"required,gt=0"`
}

// GoalFundsRequest moves money into or out of a goal
type GoalFundsRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// GoalResponse represents a savings goal in API responses
type GoalResponse struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"account_id"`
	Name          string  `json:"name"`
	TargetAmount  int64   `json:"target_amount"`
	CurrentAmount int64   `json:"current_amount"`
	Progress      float64 `json:"progress"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// GoalListResponse represents the account's savings goals
type GoalListResponse struct {
	Goals []GoalResponse `json:"goals"`
}
