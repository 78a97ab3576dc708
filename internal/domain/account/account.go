package account

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientFunds    = errors.New("insufficient funds for debit")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrEmptyFullName        = errors.New("full name cannot be empty")
	ErrInvalidAccountNumber = errors.New("account number must be 8 to 17 digits")
	ErrInvalidRoutingNumber = errors.New("routing number must be exactly 9 digits")
)

var (
	accountNumberPattern = regexp.MustCompile(`^\d{8,17}$`)
	routingNumberPattern = regexp.MustCompile(`^\d{9}$`)
)

// Account is the balance projection for one user. The balance is authoritative
// here and refreshed into the feed read model after every committed transaction.
type Account struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	AccountNumber string    `json:"account_number"`
	RoutingNumber string    `json:"routing_number"`
	Balance       int64     `json:"balance"` // Stored in cents/minor units
	PinHash       *string   `json:"-"`       // bcrypt digest, never serialized
	Version       int       `json:"version"` // For optimistic locking
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAccount creates a new account with the given parameters
func NewAccount(userID uuid.UUID, fullName, email, accountNumber, routingNumber string, initialBalance int64) (*Account, error) {
	if fullName == "" {
		return nil, ErrEmptyFullName
	}
	if !accountNumberPattern.MatchString(accountNumber) {
		return nil, ErrInvalidAccountNumber
	}
	if !routingNumberPattern.MatchString(routingNumber) {
		return nil, ErrInvalidRoutingNumber
	}
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	return &Account{
		ID:            uuid.New(),
		UserID:        userID,
		FullName:      fullName,
		Email:         email,
		AccountNumber: accountNumber,
		RoutingNumber: routingNumber,
		Balance:       initialBalance,
		Version:       1,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

// Credit adds the specified amount to the account balance
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the specified amount from the account balance.
// A debit that would take the balance negative is rejected, never clamped.
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if a.Balance < amount {
		return ErrInsufficientFunds
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanDebit checks if the account has sufficient funds for a debit
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance >= amount
}

// HasPin reports whether a transfer PIN has been set up for this account
func (a *Account) HasPin() bool {
	return a.PinHash != nil && *a.PinHash != ""
}

// ValidAccountNumber reports whether s is an acceptable external account number
func ValidAccountNumber(s string) bool {
	return accountNumberPattern.MatchString(s)
}

// ValidRoutingNumber reports whether s is an acceptable routing number
func ValidRoutingNumber(s string) bool {
	return routingNumberPattern.MatchString(s)
}
