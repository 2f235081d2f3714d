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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"banking-backend-go/internal/api"
	"banking-backend-go/internal/common"
	"banking-backend-go/internal/config"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transferRequest struct {
	username    string
	from        string
	to          string
	amount      decimal.Decimal
	description string
}

func parseAndValidateFlags() (*transferRequest, error) {
	usernameFlag := flag.String("username", "", "Username of the account owner (required)")
	fromFlag := flag.String("from", "", "Source account ID (required)")
	toFlag := flag.String("to", "", "Destination account ID (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	descriptionFlag := flag.String("description", "", "Transfer description (optional)")
	flag.Parse()

	if *usernameFlag == "" || *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --username, --from, --to, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &transferRequest{
		username:    *usernameFlag,
		from:        *fromFlag,
		to:          *toFlag,
		amount:      amount,
		description: *descriptionFlag,
	}, nil
}

func printTransferSummary(user *models.User, source *models.Account, req *transferRequest) {
	common.PrintHeader("TRANSFER REQUEST", common.DefaultWidth)
	fmt.Printf("User:              %s (%s)\n", user.Username, user.Email)
	fmt.Printf("From Account:      %s (%s)\n", source.Id, source.AccountName)
	fmt.Printf("To Account:        %s\n", req.to)
	fmt.Printf("Current Balance:   %s\n", common.FormatAmount(source.Balance, source.Currency))
	fmt.Printf("Transfer Amount:   %s\n", common.FormatAmount(req.amount, source.Currency))
	fmt.Printf("Remaining Balance: %s\n", common.FormatAmount(source.Balance.Sub(req.amount), source.Currency))
	if req.description != "" {
		fmt.Printf("Description:       %s\n", req.description)
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func printTransferFailure(reason string) {
	common.PrintHeader("TRANSFER FAILED", common.DefaultWidth)
	fmt.Printf("Error: %s\n", reason)
	common.PrintSeparator("=", common.DefaultWidth)
}

// friendlyReason maps ledger errors to the operator-facing failure line.
func friendlyReason(err error, req *transferRequest) string {
	switch {
	case errors.Is(err, api.ErrSourceAccountNotFound):
		return fmt.Sprintf("Source account %s not found or not owned by %s", req.from, req.username)
	case errors.Is(err, api.ErrDestinationAccountNotFound):
		return fmt.Sprintf("Destination account %s not found or inactive", req.to)
	case errors.Is(err, store.ErrInsufficientBalance):
		return "Insufficient balance on source account"
	case errors.Is(err, store.ErrInvalidAmount):
		return "Transfer amount must be positive"
	default:
		return err.Error()
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse and validate command line flags
	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting transfer process",
		zap.String("username", req.username),
		zap.String("from", req.from),
		zap.String("to", req.to),
		zap.String("amount", req.amount.String()))

	// Load configuration and initialize services
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// Find user by username
	user, err := services.Db.GetUserByUsername(ctx, req.username)
	if err != nil {
		printTransferFailure(fmt.Sprintf("User not found for username %s", req.username))
		zap.L().Fatal("User not found", zap.String("username", req.username), zap.Error(err))
	}

	// Look up the source account for the summary
	source, err := services.Db.GetOwnedAccount(ctx, req.from, user.Id, true)
	if err != nil {
		printTransferFailure(fmt.Sprintf("Source account %s not found or not owned by %s", req.from, req.username))
		zap.L().Fatal("Source account lookup failed", zap.String("account_id", req.from), zap.Error(err))
	}

	printTransferSummary(user, source, req)

	transaction, err := services.Ledger.Transfer(ctx, user, req.from, models.TransferRequest{
		ToAccountId: req.to,
		Amount:      req.amount,
		Currency:    source.Currency,
		Description: req.description,
	})
	if err != nil {
		fmt.Println("\n❌ Transfer failed")
		printTransferFailure(friendlyReason(err, req))
		zap.L().Fatal("Transfer failed", zap.Error(err))
	}

	fmt.Printf("✅ Transfer completed successfully!\n")
	fmt.Printf("   Transaction ID: %s\n", transaction.Id)
	fmt.Printf("   Amount:         %s\n", common.FormatAmount(transaction.Amount, transaction.Currency))
	fmt.Printf("   From:           %s\n", transaction.FromAccountId)
	fmt.Printf("   To:             %s\n", transaction.ToAccountId)
	fmt.Printf("   Status:         %s\n\n", transaction.Status)

	zap.L().Info("Transfer completed successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("from", transaction.FromAccountId),
		zap.String("to", transaction.ToAccountId),
		zap.String("amount", transaction.Amount.String()))
}
