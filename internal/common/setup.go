package common

import (
	"context"
	"log"
	"strings"

	"banking-backend-go/internal/agent"
	"banking-backend-go/internal/api"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/database"
	"banking-backend-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		// Only log if the file exists but couldn't be read
		// (godotenv returns an error if .env doesn't exist)
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Db     *database.Service
	Bank   *bank.Client
	Agent  *agent.Client
	Ledger *api.LedgerService
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Connecting bank client", zap.String("url", cfg.Bank.BaseURL))
	bankClient, err := bank.NewClient(cfg.Bank)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	zap.L().Info("Connecting agent client", zap.String("url", cfg.Agent.BaseURL))
	agentClient, err := agent.NewClient(cfg.Agent)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		Db:     dbService,
		Bank:   bankClient,
		Agent:  agentClient,
		Ledger: api.NewLedgerService(dbService, dbService, bankClient, agentClient),
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without the
// bank and agent clients. Useful for read-only operations like querying
// balances.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Db != nil {
		cs.Db.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
