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
	"flag"
	"fmt"

	"banking-backend-go/internal/common"
	"banking-backend-go/internal/config"
	"banking-backend-go/internal/database"
	"banking-backend-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalAccounts     int
	usersWithAccounts int
	frozenAccounts    int
}

func accountLabel(account models.Account) string {
	if account.IsActive {
		return account.AccountType
	}
	return account.AccountType + ", FROZEN"
}

func printAccount(account models.Account, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-8s %-20s: %20s (%s, v%d, updated: %s)\n",
		symbol,
		account.Id,
		account.AccountName,
		common.FormatAmount(account.Balance, account.Currency),
		accountLabel(account),
		account.Version,
		account.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printAccounts(accounts []models.Account) {
	for i, account := range accounts {
		isLast := i == len(accounts)-1
		printAccount(account, isLast)
	}
}

func printUserHeader(user common.UserInfo, accountCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Username, user.Email)
	fmt.Printf("│  ID: %d\n", user.Id)
	fmt.Printf("│  Accounts: %d\n", accountCount)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service) (int, int, error) {
	accounts, err := dbService.GetAccountsByUser(ctx, user.Id, false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get accounts: %w", err)
	}

	if len(accounts) == 0 {
		return 0, 0, nil
	}

	printUserHeader(user, len(accounts))
	printAccounts(accounts)

	frozen := 0
	for _, account := range accounts {
		if !account.IsActive {
			frozen++
		}
	}
	return len(accounts), frozen, nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, dbService *database.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		accountCount, frozenCount, err := processUser(ctx, user, dbService)
		if err != nil {
			logger.Error("Failed to process user",
				zap.Int64("user_id", user.Id),
				zap.String("username", user.Username),
				zap.Error(err))
			continue
		}

		if accountCount > 0 {
			stats.usersWithAccounts++
			stats.totalAccounts += accountCount
			stats.frozenAccounts += frozenCount
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	usernameFlag := flag.String("username", "", "Filter by specific username (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize database service (no need for bank or agent for read-only operations)
	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	// Initialize users based on filter
	users, err := common.InitializeUsers(ctx, dbService, *usernameFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	// Print header
	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	// Process users and generate report
	stats := processUsersAndGenerateReport(ctx, users, dbService, logger)

	// Print footer summary
	summary := fmt.Sprintf("SUMMARY: %d users with accounts (%d accounts across %d users queried, %d frozen)",
		stats.usersWithAccounts, stats.totalAccounts, stats.totalUsers, stats.frozenAccounts)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_accounts", stats.usersWithAccounts),
		zap.Int("total_accounts", stats.totalAccounts))
}
