package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := &Service{db: db}

	// Use the actual schema initialization
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func createTestUser(t *testing.T, service *Service, username string) *models.User {
	t.Helper()
	user, err := service.CreateUser(context.Background(), store.CreateUserParams{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hashed",
	})
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestAccount(t *testing.T, service *Service, id string, userId int64, balance string) *models.Account {
	t.Helper()
	account, err := service.CreateAccount(context.Background(), store.CreateAccountParams{
		Id:          id,
		AccountName: id,
		AccountType: "checking",
		Balance:     decimal.RequireFromString(balance),
		Currency:    "USD",
		UserId:      userId,
	})
	if err != nil {
		t.Fatalf("Failed to create test account %s: %v", id, err)
	}
	return account
}

func TestTransfer_MovesFunds(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	bob := createTestUser(t, service, "bob")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")
	createTestAccount(t, service, "ACC003", bob.Id, "3000")

	amount := decimal.RequireFromString("200")
	result, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC003",
		Amount:        amount,
		Currency:      "USD",
		Description:   "Rent",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if !strings.HasPrefix(result.Id, "TXN") {
		t.Errorf("Expected generated TXN id, got %s", result.Id)
	}
	if result.TransactionType != "transfer" {
		t.Errorf("Expected type transfer, got %s", result.TransactionType)
	}
	if result.Status != "completed" {
		t.Errorf("Expected status completed, got %s", result.Status)
	}
	if result.Description != "Rent" {
		t.Errorf("Expected description Rent, got %s", result.Description)
	}
	if !result.Amount.Equal(amount) {
		t.Errorf("Expected amount %s, got %s", amount.String(), result.Amount.String())
	}

	source, err := service.GetAccount(ctx, "ACC001")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !source.Balance.Equal(decimal.RequireFromString("4800")) {
		t.Errorf("Expected source balance 4800, got %s", source.Balance.String())
	}
	if source.Version != 2 {
		t.Errorf("Expected source version bump to 2, got %d", source.Version)
	}

	dest, err := service.GetAccount(ctx, "ACC003")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !dest.Balance.Equal(decimal.RequireFromString("3200")) {
		t.Errorf("Expected destination balance 3200, got %s", dest.Balance.String())
	}
}

func TestTransfer_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "100")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	_, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC002",
		Amount:        decimal.RequireFromString("100.01"),
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected insufficient balance error, got: %v", err)
	}

	// Neither a transaction row nor a balance change may survive the failure
	source, err := service.GetAccount(ctx, "ACC001")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !source.Balance.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected source balance unchanged at 100, got %s", source.Balance.String())
	}

	transactions, err := service.GetAccountTransactions(ctx, "ACC001", 10)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("Expected no recorded transactions, got %d", len(transactions))
	}
}

func TestTransfer_ExactBalanceDrainsToZero(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "250")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	_, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC002",
		Amount:        decimal.RequireFromString("250"),
	})
	if err != nil {
		t.Fatalf("Transfer of exact balance failed: %v", err)
	}

	source, _ := service.GetAccount(ctx, "ACC001")
	if !source.Balance.Equal(decimal.Zero) {
		t.Errorf("Expected source drained to 0, got %s", source.Balance.String())
	}
	dest, _ := service.GetAccount(ctx, "ACC002")
	if !dest.Balance.Equal(decimal.RequireFromString("250")) {
		t.Errorf("Expected destination balance 250, got %s", dest.Balance.String())
	}
}

func TestTransfer_SourceOwnershipEnforced(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	bob := createTestUser(t, service, "bob")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")
	createTestAccount(t, service, "ACC003", bob.Id, "3000")

	// Bob attempts to move Alice's funds
	_, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    bob.Id,
		ToAccountId:   "ACC003",
		Amount:        decimal.RequireFromString("50"),
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected account not found for foreign source, got: %v", err)
	}
}

func TestTransfer_InactiveDestinationRejected(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	if _, err := service.db.Exec("UPDATE accounts SET is_active = 0 WHERE id = ?", "ACC002"); err != nil {
		t.Fatalf("Failed to deactivate account: %v", err)
	}

	_, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC002",
		Amount:        decimal.RequireFromString("50"),
	})
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected account not found for inactive destination, got: %v", err)
	}
}

func TestTransfer_InvalidAmount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	for _, amount := range []string{"0", "-25"} {
		_, err := service.Transfer(ctx, store.TransferParams{
			FromAccountId: "ACC001",
			FromUserId:    alice.Id,
			ToAccountId:   "ACC002",
			Amount:        decimal.RequireFromString(amount),
		})
		if !errors.Is(err, store.ErrInvalidAmount) {
			t.Errorf("Expected invalid amount error for %s, got: %v", amount, err)
		}
	}
}

func TestTransfer_RepeatSubmissionMovesFundsTwice(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "1000")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	params := store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC002",
		Amount:        decimal.RequireFromString("100"),
	}

	first, err := service.Transfer(ctx, params)
	if err != nil {
		t.Fatalf("First transfer failed: %v", err)
	}
	second, err := service.Transfer(ctx, params)
	if err != nil {
		t.Fatalf("Second transfer failed: %v", err)
	}

	if first.Id == second.Id {
		t.Errorf("Expected distinct generated transaction ids, got %s twice", first.Id)
	}

	source, _ := service.GetAccount(ctx, "ACC001")
	if !source.Balance.Equal(decimal.RequireFromString("800")) {
		t.Errorf("Expected both transfers applied, balance 800, got %s", source.Balance.String())
	}
}

func TestTransfer_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	service, err := NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create database service: %v", err)
	}
	t.Cleanup(service.Close)

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "500")
	createTestAccount(t, service, "ACC002", alice.Id, "0")

	const workers = 10
	amount := decimal.RequireFromString("100")
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = service.Transfer(ctx, store.TransferParams{
				FromAccountId: "ACC001",
				FromUserId:    alice.Id,
				ToAccountId:   "ACC002",
				Amount:        amount,
			})
		}(i)
	}
	wg.Wait()

	// Contended attempts may fail on solvency or on the version guard, but
	// the committed ones must never jointly overdraw the source
	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	if successes < 1 || successes > 5 {
		t.Fatalf("Expected between 1 and 5 transfers to land on a 500 balance, got %d", successes)
	}

	source, err := service.GetAccount(ctx, "ACC001")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if source.Balance.IsNegative() {
		t.Fatalf("Source account overdrawn: %s", source.Balance.String())
	}

	moved := amount.Mul(decimal.NewFromInt(int64(successes)))
	if !source.Balance.Equal(decimal.RequireFromString("500").Sub(moved)) {
		t.Errorf("Expected source balance %s, got %s",
			decimal.RequireFromString("500").Sub(moved).String(), source.Balance.String())
	}

	dest, err := service.GetAccount(ctx, "ACC002")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !dest.Balance.Equal(moved) {
		t.Errorf("Expected destination balance %s, got %s", moved.String(), dest.Balance.String())
	}

	transactions, err := service.GetAccountTransactions(ctx, "ACC001", workers)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(transactions) != successes {
		t.Errorf("Expected %d recorded transactions, got %d", successes, len(transactions))
	}
}

func TestTransfer_SameAccountNetsToZero(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "500")

	result, err := service.Transfer(ctx, store.TransferParams{
		FromAccountId: "ACC001",
		FromUserId:    alice.Id,
		ToAccountId:   "ACC001",
		Amount:        decimal.RequireFromString("100"),
	})
	if err != nil {
		t.Fatalf("Self transfer failed: %v", err)
	}
	if result.Status != "completed" {
		t.Errorf("Expected completed self transfer, got %s", result.Status)
	}

	account, _ := service.GetAccount(ctx, "ACC001")
	if !account.Balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected unchanged balance 500, got %s", account.Balance.String())
	}
	if account.Version != 2 {
		t.Errorf("Expected single version bump, got %d", account.Version)
	}
}

func TestApplyBalanceUpdate_StaleVersion(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "500")

	tx, err := service.db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	err = applyBalanceUpdate(ctx, tx, "ACC001", decimal.RequireFromString("400"), 99)
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected concurrent modification error for stale version, got: %v", err)
	}
}

func TestInsertTransaction_IdempotentSeed(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")

	params := store.InsertTransactionParams{
		Id:              "TXN001",
		FromAccountId:   "ACC001",
		Amount:          decimal.RequireFromString("50"),
		Description:     "ATM Withdrawal",
		TransactionType: "withdrawal",
		Status:          "completed",
	}

	inserted, err := service.InsertTransaction(ctx, params)
	if err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to report inserted")
	}

	inserted, err = service.InsertTransaction(ctx, params)
	if err != nil {
		t.Fatalf("Second InsertTransaction failed: %v", err)
	}
	if inserted {
		t.Error("Expected repeat insert to be ignored")
	}

	// Historical inserts never touch balances
	account, _ := service.GetAccount(ctx, "ACC001")
	if !account.Balance.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("Expected balance untouched at 5000, got %s", account.Balance.String())
	}

	transactions, err := service.GetAccountTransactions(ctx, "ACC001", 10)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected exactly one recorded transaction, got %d", len(transactions))
	}
	if transactions[0].ToAccountId != "" {
		t.Errorf("Expected empty to_account_id, got %s", transactions[0].ToAccountId)
	}
}

func TestGetAccountTransactions_OrderAndLimit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestUser(t, service, "alice")
	createTestAccount(t, service, "ACC001", alice.Id, "5000")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []struct {
		id   string
		from string
		to   string
		at   time.Time
	}{
		{"TXN001", "ACC001", "", base},
		{"TXN002", "", "ACC001", base.Add(time.Hour)},
		{"TXN003", "ACC001", "ACC003", base.Add(2 * time.Hour)},
		{"TXN999", "ACC777", "ACC888", base.Add(3 * time.Hour)},
	}
	for _, entry := range entries {
		_, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
			Id:              entry.id,
			FromAccountId:   entry.from,
			ToAccountId:     entry.to,
			Amount:          decimal.RequireFromString("10"),
			TransactionType: "transfer",
			CreatedAt:       entry.at,
		})
		if err != nil {
			t.Fatalf("InsertTransaction %s failed: %v", entry.id, err)
		}
	}

	transactions, err := service.GetAccountTransactions(ctx, "ACC001", 2)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions with limit 2, got %d", len(transactions))
	}
	if transactions[0].Id != "TXN003" || transactions[1].Id != "TXN002" {
		t.Errorf("Expected newest-first order TXN003, TXN002, got %s, %s",
			transactions[0].Id, transactions[1].Id)
	}

	all, err := service.GetAccountTransactions(ctx, "ACC001", 10)
	if err != nil {
		t.Fatalf("GetAccountTransactions failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 transactions touching ACC001, got %d", len(all))
	}
}
