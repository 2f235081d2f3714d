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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount reads one account row. Balances are stored as TEXT and parsed
// as decimals so amounts never pass through floating point.
func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr string
	err := row.Scan(&account.Id, &account.AccountName, &account.AccountType, &balanceStr,
		&account.Currency, &account.IsActive, &account.UserId, &account.Version,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored balance %q: %w", balanceStr, err)
	}
	account.Balance = balance

	return &account, nil
}

func (s *Service) GetAccountsByUser(ctx context.Context, userId int64, activeOnly bool) ([]models.Account, error) {
	query := queryGetAccountsByUser
	if activeOnly {
		query = queryGetActiveAccountsByUser
	}

	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Int64("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			zap.L().Error("Failed to scan account row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Service) GetAccount(ctx context.Context, accountId string) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccountById, accountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
		}
		zap.L().Error("Failed to query account", zap.String("account_id", accountId), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}
	return account, nil
}

func (s *Service) GetActiveAccount(ctx context.Context, accountId string) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetActiveAccountById, accountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
		}
		zap.L().Error("Failed to query account", zap.String("account_id", accountId), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}
	return account, nil
}

// GetOwnedAccount loads an account only when it belongs to the given user.
// A missing account and a foreign account are indistinguishable to the caller.
func (s *Service) GetOwnedAccount(ctx context.Context, accountId string, userId int64, activeOnly bool) (*models.Account, error) {
	query := queryGetOwnedAccount
	if activeOnly {
		query = queryGetOwnedActiveAccount
	}

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, accountId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountId, store.ErrAccountNotFound)
		}
		zap.L().Error("Failed to query owned account",
			zap.String("account_id", accountId), zap.Int64("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}
	return account, nil
}

func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	zap.L().Info("Creating account",
		zap.String("account_id", params.Id),
		zap.String("account_type", params.AccountType),
		zap.Int64("user_id", params.UserId))

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	result, err := s.db.ExecContext(ctx, queryInsertAccount,
		params.Id, params.AccountName, params.AccountType, params.Balance.String(), currency, params.UserId)
	if err != nil {
		zap.L().Error("Failed to insert account", zap.String("account_id", params.Id), zap.Error(err))
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("account %s already exists", params.Id)
	}

	zap.L().Info("Account created successfully", zap.String("account_id", params.Id))
	return s.GetAccount(ctx, params.Id)
}
