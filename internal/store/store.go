package store

import (
	"context"
	"errors"
	"time"

	"banking-backend-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across the storage and service layers.
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInactiveUser           = errors.New("inactive user")
	ErrUserNotFound           = errors.New("user not found")
	ErrDuplicateUser          = errors.New("username or email already registered")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAmount          = errors.New("transfer amount must be positive")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword string
	FullName       string
	CustomerOID    string
}

// CreateAccountParams contains the parameters for opening a ledger account.
type CreateAccountParams struct {
	Id          string
	AccountName string
	AccountType string
	Balance     decimal.Decimal
	Currency    string
	UserId      int64
}

// TransferParams captures a funds movement between two accounts. The
// TransactionId is generated when left empty. FromUserId scopes the source
// account to its owner so the ownership check is re-evaluated atomically.
type TransferParams struct {
	TransactionId string
	FromAccountId string
	FromUserId    int64
	ToAccountId   string
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// InsertTransactionParams records a historical transaction without touching
// balances (seeding, externally settled movements). A zero CreatedAt means now.
type InsertTransactionParams struct {
	Id              string
	FromAccountId   string
	ToAccountId     string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	TransactionType string
	Status          string
	CreatedAt       time.Time
}

// IdentityStore defines the user persistence contract shared by the HTTP API,
// the credential resolver and the CLI tools.
type IdentityStore interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	SetCustomerOID(ctx context.Context, userId int64, customerOID string) error
}

// LedgerStore defines the account and transaction contract the transfer
// engine runs on.
type LedgerStore interface {
	// --- Accounts ---
	GetAccountsByUser(ctx context.Context, userId int64, activeOnly bool) ([]models.Account, error)
	GetAccount(ctx context.Context, accountId string) (*models.Account, error)
	GetActiveAccount(ctx context.Context, accountId string) (*models.Account, error)
	GetOwnedAccount(ctx context.Context, accountId string, userId int64, activeOnly bool) (*models.Account, error)
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)

	// --- Transactions ---
	Transfer(ctx context.Context, params TransferParams) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, params InsertTransactionParams) (bool, error)
	GetAccountTransactions(ctx context.Context, accountId string, limit int) ([]models.Transaction, error)

	// --- Lifecycle ---
	Close()
}
