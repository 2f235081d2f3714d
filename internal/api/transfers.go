package api

import (
	"context"
	"errors"
	"fmt"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"go.uber.org/zap"
)

// Transfer failures keep the source/destination distinction so the API can
// say which side was wrong. Both wrap store.ErrAccountNotFound, so callers
// that only care about "no such account" keep working with errors.Is.
var (
	ErrSourceAccountNotFound      = fmt.Errorf("source %w", store.ErrAccountNotFound)
	ErrDestinationAccountNotFound = fmt.Errorf("destination %w", store.ErrAccountNotFound)
)

// maxTransferAttempts bounds the retries after a concurrent balance update.
const maxTransferAttempts = 3

// Transfer moves funds between two accounts on behalf of the caller. The
// preconditions here give early, specific failures; the database transaction
// re-checks all of them and stays authoritative. Lost optimistic-lock races
// are retried a bounded number of times with fresh balance reads.
func (s *LedgerService) Transfer(ctx context.Context, user *models.User, fromAccountId string, req models.TransferRequest) (*models.Transaction, error) {
	zap.L().Info("Processing transfer",
		zap.String("from_account", fromAccountId),
		zap.String("to_account", req.ToAccountId),
		zap.String("amount", req.Amount.String()),
		zap.Int64("user_id", user.Id))

	source, err := s.db.GetOwnedAccount(ctx, fromAccountId, user.Id, true)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, fmt.Errorf("account %s: %w", fromAccountId, ErrSourceAccountNotFound)
		}
		return nil, err
	}

	destination, err := s.db.GetActiveAccount(ctx, req.ToAccountId)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, fmt.Errorf("account %s: %w", req.ToAccountId, ErrDestinationAccountNotFound)
		}
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount %s - %w", req.Amount.String(), store.ErrInvalidAmount)
	}
	if source.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("balance %s below transfer amount %s - %w",
			source.Balance.String(), req.Amount.String(), store.ErrInsufficientBalance)
	}

	fraudResult := map[string]any{"status": "unavailable"}
	if s.agent != nil {
		fraudResult = s.agent.Call(ctx, "fraud_check", map[string]any{
			"from_account": source.Id,
			"to_account":   destination.Id,
			"amount":       req.Amount.String(),
			"user_id":      user.Id,
		})
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", destination.Id)
	}

	var transaction *models.Transaction
	for attempt := 1; ; attempt++ {
		transaction, err = s.db.Transfer(ctx, store.TransferParams{
			FromAccountId: source.Id,
			FromUserId:    user.Id,
			ToAccountId:   destination.Id,
			Amount:        req.Amount,
			Currency:      req.Currency,
			Description:   description,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConcurrentModification) || attempt >= maxTransferAttempts {
			return nil, err
		}
		zap.L().Warn("Transfer lost a concurrent balance update, retrying",
			zap.String("from_account", source.Id),
			zap.String("to_account", destination.Id),
			zap.Int("attempt", attempt))
	}

	s.notifyAgent("transfer_completed", map[string]any{
		"transaction_id":     transaction.Id,
		"from_account":       source.Id,
		"to_account":         destination.Id,
		"amount":             req.Amount.String(),
		"user_id":            user.Id,
		"fraud_check_result": fraudResult,
	})

	zap.L().Info("Transfer completed",
		zap.String("transaction_id", transaction.Id),
		zap.String("from_account", source.Id),
		zap.String("to_account", destination.Id),
		zap.String("amount", req.Amount.String()))

	return transaction, nil
}
