package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"banking-backend-go/internal/agent"
	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"
)

func testBankClient(t *testing.T, baseURL string) *bank.Client {
	t.Helper()

	client, err := bank.NewClient(models.BankConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create bank client: %v", err)
	}
	return client
}

func testAgentClient(t *testing.T, baseURL string) *agent.Client {
	t.Helper()

	client, err := agent.NewClient(models.AgentConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create agent client: %v", err)
	}
	return client
}

// createUnlinkedUser inserts a user who never reached the bank, as happens
// when registration runs while the bank is down.
func (e *testEnv) createUnlinkedUser(t *testing.T, username string) {
	t.Helper()

	hashed, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	_, err = e.db.CreateUser(context.Background(), store.CreateUserParams{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hashed,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
}

func TestBankSyncFlow(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/exists") {
			json.NewEncoder(w).Encode(map[string]any{"exists": true})
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	env.createUnlinkedUser(t, "john_doe")
	token := env.login(t, "john_doe")

	first := env.request(t, http.MethodPost, "/bank/sync", nil, bearer(token))
	if first.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", first.Code, first.Body.String())
	}
	firstBody := decodeBody(t, first)
	if firstBody["message"] != "Successfully synced with bank" {
		t.Errorf("Unexpected message: %v", firstBody["message"])
	}
	customerOID, _ := firstBody["customer_oid"].(string)
	if customerOID == "" {
		t.Fatal("Expected a customer OID")
	}

	second := env.request(t, http.MethodPost, "/bank/sync", nil, bearer(token))
	secondBody := decodeBody(t, second)
	if secondBody["message"] != "User already synced with bank" {
		t.Errorf("Unexpected message: %v", secondBody["message"])
	}
	if secondBody["customer_oid"] != customerOID {
		t.Errorf("Expected OID %s, got %v", customerOID, secondBody["customer_oid"])
	}
}

func TestBankSync_BankDown(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	env.createUnlinkedUser(t, "john_doe")
	token := env.login(t, "john_doe")

	recorder := env.request(t, http.MethodPost, "/bank/sync", nil, bearer(token))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", recorder.Code)
	}
}

func TestBankPortfolio(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register-customer":
			w.WriteHeader(http.StatusCreated)
		default:
			json.NewEncoder(w).Encode(map[string]any{"holdings": []any{}, "total": "0"})
		}
	}))
	defer bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodGet, "/bank/portfolio", nil, bearer(token))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if decodeBody(t, recorder)["total"] != "0" {
		t.Errorf("Expected portfolio payload, got %s", recorder.Body.String())
	}
}

func TestBankPortfolio_UnlinkedUser(t *testing.T) {
	env := setupTestRouter(t)
	env.createUnlinkedUser(t, "john_doe")
	token := env.login(t, "john_doe")

	recorder := env.request(t, http.MethodGet, "/bank/portfolio", nil, bearer(token))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", recorder.Code)
	}
	if detail(t, recorder) != "User not linked to bank. Please contact support." {
		t.Errorf("Unexpected detail: %s", recorder.Body.String())
	}
}

func TestBankPortfolio_GoneFromBank(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register-customer":
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodGet, "/bank/portfolio", nil, bearer(token))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", recorder.Code)
	}
	if detail(t, recorder) != "Portfolio not found in bank" {
		t.Errorf("Unexpected detail: %s", recorder.Body.String())
	}
}

func TestBankStatusEndpoint(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodGet, "/bank/status", nil, bearer(token))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	if decodeBody(t, recorder)["status"] != "connected" {
		t.Errorf("Expected connected, got %s", recorder.Body.String())
	}
}

func TestBankCustomersEndpoint(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register-customer":
			w.WriteHeader(http.StatusCreated)
		case "/customers":
			json.NewEncoder(w).Encode([]map[string]any{{"name": "John Doe"}})
		}
	}))
	defer bankServer.Close()

	env := setupTestRouterWithClients(t, testBankClient(t, bankServer.URL), nil)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodGet, "/bank/customers", nil, bearer(token))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var customers []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &customers); err != nil {
		t.Fatalf("Failed to decode customers: %v", err)
	}
	if len(customers) != 1 {
		t.Errorf("Expected 1 customer, got %d", len(customers))
	}
}

func TestAgentQueryEndpoint(t *testing.T) {
	agentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "answer": "two transfers today"})
	}))
	defer agentServer.Close()

	env := setupTestRouterWithClients(t, nil, testAgentClient(t, agentServer.URL))
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodPost, "/agent/query", map[string]any{
		"query": "recent transfers",
	}, bearer(token))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	if decodeBody(t, recorder)["answer"] != "two transfers today" {
		t.Errorf("Expected agent answer, got %s", recorder.Body.String())
	}
}

func TestAgentQuery_RequiresQuery(t *testing.T) {
	env := setupTestRouter(t)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodPost, "/agent/query", map[string]any{}, bearer(token))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if detail(t, recorder) != "Query is required" {
		t.Errorf("Unexpected detail: %s", recorder.Body.String())
	}
}

func TestConfigUpdateRepointsAgent(t *testing.T) {
	agentClient := testAgentClient(t, "http://127.0.0.1:1")

	env := setupTestRouterWithClients(t, nil, agentClient)
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodPost, "/config", map[string]any{
		"agent_url": "http://127.0.0.1:9999",
	}, bearer(token))
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	body := decodeBody(t, recorder)
	if body["message"] != "Configuration updated" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if agentClient.BaseURL() != "http://127.0.0.1:9999" {
		t.Errorf("Expected base URL updated, got %s", agentClient.BaseURL())
	}
}

func TestConfigUpdate_RequiresAgentURL(t *testing.T) {
	env := setupTestRouterWithClients(t, nil, testAgentClient(t, "http://127.0.0.1:1"))
	token := env.registerUser(t, "john_doe")

	recorder := env.request(t, http.MethodPost, "/config", map[string]any{
		"other_key": "value",
	}, bearer(token))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if detail(t, recorder) != "agent_url is required" {
		t.Errorf("Unexpected detail: %s", recorder.Body.String())
	}
}
