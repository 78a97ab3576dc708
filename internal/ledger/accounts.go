package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/account"
)

// ErrDuplicateUser indicates the user already owns an account
type ErrDuplicateUser struct {
	UserID uuid.UUID
}

func (e ErrDuplicateUser) Error() string {
	return "account already exists for user: " + e.UserID.String()
}

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount opens an account for the user.
	// Returns ErrDuplicateUser if the user already has one.
	CreateAccount(ctx context.Context, userID uuid.UUID, fullName, email, accountNumber, routingNumber string, initialBalance int64) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// CreateAccount opens an account for the user, rejecting a second account
// for the same user
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, userID uuid.UUID, fullName, email, accountNumber, routingNumber string, initialBalance int64) (*account.Account, error) {
	existing, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser{UserID: userID}
	}

	acc, err := account.NewAccount(userID, fullName, email, accountNumber, routingNumber, initialBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID retrieves an account, returning ErrAccountNotFound when missing
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}
