/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the payload for creating a new user
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

// LoginRequest is the JSON login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly minted access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TransferRequest is the payload for moving funds between accounts
type TransferRequest struct {
	ToAccountId string          `json:"to_account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
}

// AgentQueryRequest is the payload forwarded to the risk agent
type AgentQueryRequest struct {
	Query string `json:"query"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	Id          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	CustomerOID string    `json:"customer_oid,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountResponse is the public view of a ledger account
type AccountResponse struct {
	Id          string          `json:"id"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"is_active"`
	UserId      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AccountListResponse wraps the accounts owned by the caller
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// BalanceResponse represents a single account's balance
type BalanceResponse struct {
	AccountId   string          `json:"account_id"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	AccountName string          `json:"account_name"`
}

// TransactionResponse is a transaction in an account's history
type TransactionResponse struct {
	Id              string          `json:"id"`
	FromAccountId   string          `json:"from_account_id,omitempty"`
	ToAccountId     string          `json:"to_account_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description,omitempty"`
	TransactionType string          `json:"transaction_type"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
