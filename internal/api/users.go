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
	"fmt"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"go.uber.org/zap"
)

// Register creates a local user and attempts to register them with the
// partner bank. Bank registration is best effort: a dead bank must not
// block signups, so the user is created without a customer OID and can
// be linked later through SyncWithBank.
func (s *LedgerService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	exists, err := s.identity.UserExists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("unable to check existing users: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("user %s - %w", req.Username, store.ErrDuplicateUser)
	}

	customerOID := ""
	if s.bank != nil {
		result := s.bank.RegisterCustomer(ctx, bankCustomerName(req.FullName, req.Username))
		if result.Status == models.BankStatusSuccess {
			customerOID = result.CustomerOID
		} else {
			zap.L().Warn("Bank registration failed during signup, continuing without link",
				zap.String("username", req.Username),
				zap.String("error", result.Error))
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.identity.CreateUser(ctx, store.CreateUserParams{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		FullName:       req.FullName,
		CustomerOID:    customerOID,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("User registered",
		zap.String("username", user.Username),
		zap.Bool("bank_linked", user.CustomerOID != ""))

	return user, nil
}

// SyncWithBank links an existing user to the partner bank. A stored
// customer OID is verified against the bank first: if the bank still
// knows the customer the existing link is reported, otherwise the user
// is registered again and the stale OID replaced.
func (s *LedgerService) SyncWithBank(ctx context.Context, user *models.User) (string, bool, error) {
	if s.bank == nil {
		return "", false, fmt.Errorf("bank client not configured")
	}

	if user.CustomerOID != "" {
		check := s.bank.CheckCustomerExists(ctx, user.CustomerOID)
		if check.Status == models.BankStatusSuccess && customerStillExists(check.Data) {
			return user.CustomerOID, true, nil
		}
		zap.L().Warn("Stored customer OID not confirmed by bank, re-registering",
			zap.String("username", user.Username),
			zap.String("customer_oid", user.CustomerOID))
	}

	result := s.bank.RegisterCustomer(ctx, bankCustomerName(user.FullName, user.Username))
	if result.Status != models.BankStatusSuccess {
		return "", false, fmt.Errorf("unable to sync with bank: %s", result.Error)
	}

	if err := s.identity.SetCustomerOID(ctx, user.Id, result.CustomerOID); err != nil {
		return "", false, fmt.Errorf("unable to store customer OID: %w", err)
	}

	zap.L().Info("User synced with bank",
		zap.String("username", user.Username),
		zap.String("customer_oid", result.CustomerOID))

	return result.CustomerOID, false, nil
}

// ListUsers returns every registered user.
func (s *LedgerService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.identity.GetUsers(ctx)
}

func bankCustomerName(fullName, username string) string {
	if fullName != "" {
		return fullName
	}
	return username
}

// customerStillExists reads the exists flag out of the bank's response
// body. Anything other than an explicit true means the link is stale.
func customerStillExists(data any) bool {
	payload, ok := data.(map[string]any)
	if !ok {
		return false
	}
	exists, _ := payload["exists"].(bool)
	return exists
}
