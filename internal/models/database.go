package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered user of the banking backend
type User struct {
	Id             int64     `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	FullName       string    `db:"full_name"`
	CustomerOID    string    `db:"customer_oid"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
}

// Account represents a ledger account owned by a user (hot data)
type Account struct {
	Id          string          `db:"id"`
	AccountName string          `db:"account_name"`
	AccountType string          `db:"account_type"`
	Balance     decimal.Decimal `db:"balance"`
	Currency    string          `db:"currency"`
	IsActive    bool            `db:"is_active"`
	UserId      int64           `db:"user_id"`
	Version     int64           `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Transaction represents immutable transaction history (cold data)
type Transaction struct {
	Id              string          `db:"id"`
	FromAccountId   string          `db:"from_account_id"`
	ToAccountId     string          `db:"to_account_id"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	Description     string          `db:"description"`
	TransactionType string          `db:"transaction_type"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}
