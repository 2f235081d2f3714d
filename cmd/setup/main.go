package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/common"
	"banking-backend-go/internal/config"
	"banking-backend-go/internal/models"

	"go.uber.org/zap"
)

// resetDatabase removes the database file and its WAL sidecars so the next
// open starts from an empty schema.
func resetDatabase(path string) error {
	for _, file := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unable to remove %s: %w", file, err)
		}
	}
	zap.L().Info("Database reset", zap.String("path", path))
	return nil
}

func printSummary(seedFile string, stats *common.SeedStats, bankLinked bool) {
	common.PrintHeader("DATABASE SETUP COMPLETE", common.DefaultWidth)
	fmt.Printf("\n┌─ Seed file: %s\n", seedFile)
	fmt.Printf("%sUsers created:        %d\n", common.BoxPrefix(false), stats.UsersCreated)
	fmt.Printf("%sAccounts created:     %d\n", common.BoxPrefix(false), stats.AccountsCreated)
	fmt.Printf("%sTransactions created: %d\n", common.BoxPrefix(false), stats.TransactionsCreated)
	if bankLinked {
		fmt.Printf("%sBank linkage:         enabled\n", common.BoxPrefix(true))
	} else {
		fmt.Printf("%sBank linkage:         skipped\n", common.BoxPrefix(true))
	}
	common.PrintFooter("Start the API server with: go run ./cmd/server", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFile := flag.String("seed", "seed.yaml", "Path to the seed file with demo users and accounts")
	reset := flag.Bool("reset", false, "Delete the existing database before seeding")
	noBank := flag.Bool("no-bank", false, "Skip bank registration for seeded users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	seed, err := common.LoadSeedConfig(*seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed file", zap.String("file", *seedFile), zap.Error(err))
	}
	zap.L().Info("Seed file loaded",
		zap.String("file", *seedFile),
		zap.Int("users", len(seed.Users)),
		zap.Int("accounts", len(seed.Accounts)),
		zap.Int("transactions", len(seed.Transactions)))

	if *reset {
		if err := resetDatabase(cfg.Database.Path); err != nil {
			zap.L().Fatal("Failed to reset database", zap.Error(err))
		}
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	var bankClient *bank.Client
	if !*noBank {
		bankClient, err = bank.NewClient(cfg.Bank)
		if err != nil {
			zap.L().Fatal("Failed to create bank client", zap.Error(err))
		}
		if result := bankClient.CheckConnection(ctx); result.Status != models.BankStatusConnected {
			zap.L().Warn("Bank unreachable, seeded users will not be linked",
				zap.String("url", cfg.Bank.BaseURL))
		}
	}

	stats, err := common.ApplySeed(ctx, dbService, dbService, bankClient, seed)
	if err != nil {
		zap.L().Fatal("Failed to apply seed data", zap.Error(err))
	}

	printSummary(*seedFile, stats, bankClient != nil)
}
