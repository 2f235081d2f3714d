package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewTransactionId returns a ledger transaction id such as TXN3F2A1C.
func NewTransactionId() string {
	id := uuid.New()
	return fmt.Sprintf("TXN%X", id[:3])
}

// scanTransaction reads one transaction row in the canonical column order.
func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var transaction models.Transaction
	var amountStr string
	err := row.Scan(&transaction.Id, &transaction.FromAccountId, &transaction.ToAccountId,
		&amountStr, &transaction.Currency, &transaction.Description,
		&transaction.TransactionType, &transaction.Status, &transaction.CreatedAt)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
	}
	transaction.Amount = amount

	return &transaction, nil
}

// Transfer atomically moves funds between two accounts: the ownership, active
// and solvency checks are re-evaluated inside the database transaction, the
// transfer is recorded as a completed transaction, and both balances are
// updated under optimistic locking. No partial state survives a failure.
func (s *Service) Transfer(ctx context.Context, params store.TransferParams) (*models.Transaction, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("amount %s - %w", params.Amount.String(), store.ErrInvalidAmount)
	}

	transactionId := params.TransactionId
	if transactionId == "" {
		transactionId = NewTransactionId()
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	zap.L().Info("Processing transfer",
		zap.String("transaction_id", transactionId),
		zap.String("from_account", params.FromAccountId),
		zap.String("to_account", params.ToAccountId),
		zap.String("amount", params.Amount.String()))

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Load source account scoped to its owner
	var sourceBalanceStr string
	var sourceVersion int64
	err = tx.QueryRowContext(ctx, queryTransferSourceAccount, params.FromAccountId, params.FromUserId).
		Scan(&sourceBalanceStr, &sourceVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source account %s: %w", params.FromAccountId, store.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load source account: %w", err)
	}

	var destBalanceStr string
	var destVersion int64
	err = tx.QueryRowContext(ctx, queryTransferDestinationAccount, params.ToAccountId).
		Scan(&destBalanceStr, &destVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("destination account %s: %w", params.ToAccountId, store.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load destination account: %w", err)
	}

	sourceBalance, err := decimal.NewFromString(sourceBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source balance %q: %w", sourceBalanceStr, err)
	}
	destBalance, err := decimal.NewFromString(destBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse destination balance %q: %w", destBalanceStr, err)
	}

	if sourceBalance.LessThan(params.Amount) {
		return nil, fmt.Errorf("balance %s below transfer amount %s - %w",
			sourceBalance.String(), params.Amount.String(), store.ErrInsufficientBalance)
	}

	// Record the completed transaction
	now := time.Now()
	transaction, err := scanTransaction(tx.QueryRowContext(ctx, queryInsertTransaction,
		transactionId, params.FromAccountId, params.ToAccountId, params.Amount.String(),
		currency, params.Description, "transfer", "completed", now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Update balances with optimistic locking; a transfer to the same account
	// nets to zero and touches the row once
	if params.FromAccountId == params.ToAccountId {
		if err := applyBalanceUpdate(ctx, tx, params.FromAccountId, sourceBalance, sourceVersion); err != nil {
			return nil, err
		}
	} else {
		newSourceBalance := sourceBalance.Sub(params.Amount)
		newDestBalance := destBalance.Add(params.Amount)

		if err := applyBalanceUpdate(ctx, tx, params.FromAccountId, newSourceBalance, sourceVersion); err != nil {
			return nil, err
		}
		if err := applyBalanceUpdate(ctx, tx, params.ToAccountId, newDestBalance, destVersion); err != nil {
			return nil, err
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transfer processed successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("from_account", params.FromAccountId),
		zap.String("to_account", params.ToAccountId),
		zap.String("amount", params.Amount.String()))

	return transaction, nil
}

func applyBalanceUpdate(ctx context.Context, tx *sql.Tx, accountId string, newBalance decimal.Decimal, version int64) error {
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), accountId, version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

// InsertTransaction records a historical transaction without touching account
// balances. Returns false when the transaction id already exists.
func (s *Service) InsertTransaction(ctx context.Context, params store.InsertTransactionParams) (bool, error) {
	if params.Id == "" {
		return false, fmt.Errorf("transaction id cannot be empty")
	}

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	status := params.Status
	if status == "" {
		status = "completed"
	}
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, queryInsertTransactionIgnore,
		params.Id, params.FromAccountId, params.ToAccountId, params.Amount.String(),
		currency, params.Description, params.TransactionType, status, createdAt)
	if err != nil {
		zap.L().Error("Failed to insert transaction", zap.String("transaction_id", params.Id), zap.Error(err))
		return false, fmt.Errorf("unable to insert transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unable to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetAccountTransactions returns the most recent transactions touching an
// account, newest first.
func (s *Service) GetAccountTransactions(ctx context.Context, accountId string, limit int) ([]models.Transaction, error) {
	zap.L().Debug("Getting account transactions",
		zap.String("account_id", accountId),
		zap.Int("limit", limit))

	rows, err := s.db.QueryContext(ctx, queryGetAccountTransactions, accountId, accountId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get account transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
