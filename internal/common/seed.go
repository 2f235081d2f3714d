package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

type SeedAccount struct {
	Id       string `yaml:"id"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Balance  string `yaml:"balance"`
	Currency string `yaml:"currency"`
	Owner    string `yaml:"owner"`
}

type SeedTransaction struct {
	Id          string `yaml:"id"`
	FromAccount string `yaml:"from_account"`
	ToAccount   string `yaml:"to_account"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Status      string `yaml:"status"`
}

type SeedConfig struct {
	Users        []SeedUser        `yaml:"users"`
	Accounts     []SeedAccount     `yaml:"accounts"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

// SeedStats reports what ApplySeed actually inserted. Entries that already
// existed are skipped, not counted.
type SeedStats struct {
	UsersCreated        int
	AccountsCreated     int
	TransactionsCreated int
}

func LoadSeedConfig(seedFile string) (*SeedConfig, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, user := range config.Users {
		if user.Username == "" || user.Email == "" || user.Password == "" {
			return nil, fmt.Errorf("user at index %d missing username, email or password", i)
		}
	}
	for i, account := range config.Accounts {
		if account.Id == "" {
			return nil, fmt.Errorf("account at index %d missing id", i)
		}
		if account.Owner == "" {
			return nil, fmt.Errorf("account %s missing owner", account.Id)
		}
		if _, err := decimal.NewFromString(account.Balance); err != nil {
			return nil, fmt.Errorf("account %s has invalid balance %q: %w", account.Id, account.Balance, err)
		}
	}
	for i, transaction := range config.Transactions {
		if transaction.Id == "" {
			return nil, fmt.Errorf("transaction at index %d missing id", i)
		}
		if transaction.FromAccount == "" && transaction.ToAccount == "" {
			return nil, fmt.Errorf("transaction %s names neither account", transaction.Id)
		}
		if _, err := decimal.NewFromString(transaction.Amount); err != nil {
			return nil, fmt.Errorf("transaction %s has invalid amount %q: %w", transaction.Id, transaction.Amount, err)
		}
	}

	return &config, nil
}

// ApplySeed loads the demo dataset into the database. It is idempotent:
// users, accounts and transactions that already exist are left untouched,
// so re-running setup never duplicates rows or resets balances. Seeded
// transactions are history only and do not move balances.
func ApplySeed(ctx context.Context, identity store.IdentityStore, ledger store.LedgerStore, bankClient *bank.Client, seed *SeedConfig) (*SeedStats, error) {
	stats := &SeedStats{}
	owners := make(map[string]int64)

	for _, seedUser := range seed.Users {
		existing, err := identity.GetUserByUsername(ctx, seedUser.Username)
		if err == nil {
			owners[seedUser.Username] = existing.Id
			zap.L().Info("Seed user already exists, skipping", zap.String("username", seedUser.Username))
			continue
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			return stats, fmt.Errorf("unable to check seed user %s: %w", seedUser.Username, err)
		}

		customerOID := ""
		if bankClient != nil {
			name := seedUser.FullName
			if name == "" {
				name = seedUser.Username
			}
			result := bankClient.RegisterCustomer(ctx, name)
			if result.Status == models.BankStatusSuccess {
				customerOID = result.CustomerOID
			} else {
				zap.L().Warn("Bank registration failed for seed user, continuing without link",
					zap.String("username", seedUser.Username),
					zap.String("error", result.Error))
			}
		}

		hashedPassword, err := auth.HashPassword(seedUser.Password)
		if err != nil {
			return stats, err
		}

		user, err := identity.CreateUser(ctx, store.CreateUserParams{
			Username:       seedUser.Username,
			Email:          seedUser.Email,
			HashedPassword: hashedPassword,
			FullName:       seedUser.FullName,
			CustomerOID:    customerOID,
		})
		if err != nil {
			return stats, fmt.Errorf("unable to create seed user %s: %w", seedUser.Username, err)
		}

		owners[user.Username] = user.Id
		stats.UsersCreated++
	}

	for _, seedAccount := range seed.Accounts {
		if _, err := ledger.GetAccount(ctx, seedAccount.Id); err == nil {
			zap.L().Info("Seed account already exists, skipping", zap.String("account_id", seedAccount.Id))
			continue
		} else if !errors.Is(err, store.ErrAccountNotFound) {
			return stats, fmt.Errorf("unable to check seed account %s: %w", seedAccount.Id, err)
		}

		ownerId, ok := owners[seedAccount.Owner]
		if !ok {
			owner, err := identity.GetUserByUsername(ctx, seedAccount.Owner)
			if err != nil {
				return stats, fmt.Errorf("seed account %s references unknown owner %s: %w",
					seedAccount.Id, seedAccount.Owner, err)
			}
			ownerId = owner.Id
			owners[seedAccount.Owner] = ownerId
		}

		balance, err := decimal.NewFromString(seedAccount.Balance)
		if err != nil {
			return stats, fmt.Errorf("seed account %s has invalid balance: %w", seedAccount.Id, err)
		}

		_, err = ledger.CreateAccount(ctx, store.CreateAccountParams{
			Id:          seedAccount.Id,
			AccountName: seedAccount.Name,
			AccountType: seedAccount.Type,
			Balance:     balance,
			Currency:    seedAccount.Currency,
			UserId:      ownerId,
		})
		if err != nil {
			return stats, fmt.Errorf("unable to create seed account %s: %w", seedAccount.Id, err)
		}
		stats.AccountsCreated++
	}

	for _, seedTransaction := range seed.Transactions {
		amount, err := decimal.NewFromString(seedTransaction.Amount)
		if err != nil {
			return stats, fmt.Errorf("seed transaction %s has invalid amount: %w", seedTransaction.Id, err)
		}

		inserted, err := ledger.InsertTransaction(ctx, store.InsertTransactionParams{
			Id:              seedTransaction.Id,
			FromAccountId:   seedTransaction.FromAccount,
			ToAccountId:     seedTransaction.ToAccount,
			Amount:          amount,
			Description:     seedTransaction.Description,
			TransactionType: seedTransaction.Type,
			Status:          seedTransaction.Status,
		})
		if err != nil {
			return stats, fmt.Errorf("unable to insert seed transaction %s: %w", seedTransaction.Id, err)
		}
		if inserted {
			stats.TransactionsCreated++
		}
	}

	zap.L().Info("Seed applied",
		zap.Int("users_created", stats.UsersCreated),
		zap.Int("accounts_created", stats.AccountsCreated),
		zap.Int("transactions_created", stats.TransactionsCreated))

	return stats, nil
}
