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

package api

import (
	"context"

	"banking-backend-go/internal/models"
)

const (
	defaultTransactionLimit = 10
	maxTransactionLimit     = 100
)

// ListAccounts returns the caller's active accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, user *models.User) ([]models.Account, error) {
	accounts, err := s.db.GetAccountsByUser(ctx, user.Id, true)
	if err != nil {
		return nil, err
	}

	s.notifyAgent("account_access", map[string]any{
		"user_id":  user.Id,
		"username": user.Username,
	})

	return accounts, nil
}

// GetAccount returns one of the caller's active accounts.
func (s *LedgerService) GetAccount(ctx context.Context, user *models.User, accountId string) (*models.Account, error) {
	account, err := s.db.GetOwnedAccount(ctx, accountId, user.Id, true)
	if err != nil {
		return nil, err
	}

	s.notifyAgent("account_details", map[string]any{
		"user_id":    user.Id,
		"account_id": account.Id,
	})

	return account, nil
}

// GetBalance returns the current balance of one of the caller's accounts.
func (s *LedgerService) GetBalance(ctx context.Context, user *models.User, accountId string) (*models.BalanceResponse, error) {
	account, err := s.db.GetOwnedAccount(ctx, accountId, user.Id, true)
	if err != nil {
		return nil, err
	}

	s.notifyAgent("balance_check", map[string]any{
		"user_id":    user.Id,
		"account_id": account.Id,
		"balance":    account.Balance.String(),
	})

	return &models.BalanceResponse{
		AccountId:   account.Id,
		Balance:     account.Balance,
		Currency:    account.Currency,
		AccountName: account.AccountName,
	}, nil
}

// ListTransactions returns the most recent ledger entries touching one of
// the caller's accounts. Frozen accounts keep their history readable, so
// ownership is checked without the active filter.
func (s *LedgerService) ListTransactions(ctx context.Context, user *models.User, accountId string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	account, err := s.db.GetOwnedAccount(ctx, accountId, user.Id, false)
	if err != nil {
		return nil, err
	}

	transactions, err := s.db.GetAccountTransactions(ctx, account.Id, limit)
	if err != nil {
		return nil, err
	}

	s.notifyAgent("transaction_history", map[string]any{
		"user_id":    user.Id,
		"account_id": account.Id,
		"limit":      limit,
	})

	return transactions, nil
}
