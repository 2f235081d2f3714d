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

const (
	// User queries
	queryGetUsers = `
		SELECT id, username, email, hashed_password, full_name, COALESCE(customer_oid, ''), is_active, created_at
		FROM users
		ORDER BY created_at`

	queryGetUserById = `
		SELECT id, username, email, hashed_password, full_name, COALESCE(customer_oid, ''), is_active, created_at
		FROM users
		WHERE id = ?`

	queryGetUserByUsername = `
		SELECT id, username, email, hashed_password, full_name, COALESCE(customer_oid, ''), is_active, created_at
		FROM users
		WHERE username = ?`

	queryCheckUserExists = `
		SELECT id FROM users WHERE username = ? OR email = ? LIMIT 1`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (username, email, hashed_password, full_name, customer_oid)
		VALUES (?, ?, ?, ?, NULLIF(?, ''))`

	querySetCustomerOID = `
		UPDATE users SET customer_oid = NULLIF(?, '') WHERE id = ?`

	// Account queries
	queryGetAccountsByUser = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY id`

	queryGetActiveAccountsByUser = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`

	queryGetAccountById = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryGetActiveAccountById = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE id = ? AND is_active = 1`

	queryGetOwnedAccount = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE id = ? AND user_id = ?`

	queryGetOwnedActiveAccount = `
		SELECT id, account_name, account_type, balance, currency, is_active, user_id, version, created_at, updated_at
		FROM accounts
		WHERE id = ? AND user_id = ? AND is_active = 1`

	queryInsertAccount = `
		INSERT OR IGNORE INTO accounts (id, account_name, account_type, balance, currency, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	// Transfer queries
	queryTransferSourceAccount = `
		SELECT balance, version
		FROM accounts
		WHERE id = ? AND user_id = ? AND is_active = 1`

	queryTransferDestinationAccount = `
		SELECT balance, version
		FROM accounts
		WHERE id = ? AND is_active = 1`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, from_account_id, to_account_id, amount, currency, description, transaction_type, status, created_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?, ?, ?)
		RETURNING id, COALESCE(from_account_id, ''), COALESCE(to_account_id, ''), amount, currency,
		          COALESCE(description, ''), transaction_type, status, created_at`

	queryInsertTransactionIgnore = `
		INSERT OR IGNORE INTO transactions (id, from_account_id, to_account_id, amount, currency, description, transaction_type, status, created_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?, ?, ?)`

	queryGetAccountTransactions = `
		SELECT id, COALESCE(from_account_id, ''), COALESCE(to_account_id, ''), amount, currency,
		       COALESCE(description, ''), transaction_type, status, created_at
		FROM transactions
		WHERE from_account_id = ? OR to_account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`
)
