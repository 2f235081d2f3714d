package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"banking-backend-go/internal/agent"
	"banking-backend-go/internal/api"
	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/database"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	router  *gin.Engine
	db      *database.Service
	authCfg models.AuthConfig
}

func setupTestRouter(t *testing.T) *testEnv {
	return setupTestRouterWithClients(t, nil, nil)
}

func setupTestRouterWithClients(t *testing.T, bankClient *bank.Client, agentClient *agent.Client) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create database service: %v", err)
	}
	t.Cleanup(db.Close)

	authCfg := models.AuthConfig{
		SecretKey:     "test-secret",
		TokenLifetime: 30 * time.Minute,
	}

	router := NewRouter(models.ServerConfig{AllowedOrigins: "*"}, Dependencies{
		Ledger:   api.NewLedgerService(db, db, bankClient, agentClient),
		Identity: db,
		Resolver: auth.NewResolver(authCfg, db, nil),
		Bank:     bankClient,
		Agent:    agentClient,
		Auth:     authCfg,
	})

	return &testEnv{router: router, db: db, authCfg: authCfg}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, request)
	return recorder
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	decoded := map[string]any{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return decoded
}

func detail(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	value, _ := decodeBody(t, recorder)["detail"].(string)
	return value
}

// registerUser creates a user through the API and returns a bearer token.
func (e *testEnv) registerUser(t *testing.T, username string) string {
	t.Helper()

	recorder := e.request(t, http.MethodPost, "/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Register %s failed with %d: %s", username, recorder.Code, recorder.Body.String())
	}

	return e.login(t, username)
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	recorder := e.request(t, http.MethodPost, "/login", map[string]any{
		"username": username,
		"password": "password123",
	}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Login %s failed with %d: %s", username, recorder.Code, recorder.Body.String())
	}

	var token models.TokenResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &token); err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}
	return token.AccessToken
}

func (e *testEnv) createAccount(t *testing.T, username, accountId, balance string) {
	t.Helper()

	user, err := e.db.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("Failed to look up %s: %v", username, err)
	}

	_, err = e.db.CreateAccount(context.Background(), store.CreateAccountParams{
		Id:          accountId,
		AccountName: accountId + " checking",
		AccountType: "checking",
		Balance:     decimal.RequireFromString(balance),
		UserId:      user.Id,
	})
	if err != nil {
		t.Fatalf("Failed to create account %s: %v", accountId, err)
	}
}

func TestHealth_CollaboratorsDown(t *testing.T) {
	env := setupTestRouter(t)

	recorder := env.request(t, http.MethodGet, "/health", nil, nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	body := decodeBody(t, recorder)
	if body["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", body["status"])
	}
	if body["database"] != "connected" {
		t.Errorf("Expected database connected, got %v", body["database"])
	}
	if body["agent"] != "unavailable" {
		t.Errorf("Expected agent unavailable, got %v", body["agent"])
	}
	if body["bank"] != "disconnected" {
		t.Errorf("Expected bank disconnected, got %v", body["bank"])
	}
}

func TestHealth_WithCollaborators(t *testing.T) {
	bankServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer bankServer.Close()
	agentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "online"})
	}))
	defer agentServer.Close()

	bankClient, err := bank.NewClient(models.BankConfig{BaseURL: bankServer.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create bank client: %v", err)
	}
	agentClient, err := agent.NewClient(models.AgentConfig{BaseURL: agentServer.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create agent client: %v", err)
	}

	env := setupTestRouterWithClients(t, bankClient, agentClient)

	body := decodeBody(t, env.request(t, http.MethodGet, "/health", nil, nil))
	if body["bank"] != "connected" {
		t.Errorf("Expected bank connected, got %v", body["bank"])
	}
	if body["agent"] != "online" {
		t.Errorf("Expected agent online, got %v", body["agent"])
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	request := httptest.NewRequest(http.MethodOptions, "/accounts", strings.NewReader(""))
	request.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 for preflight, got %d", recorder.Code)
	}
	if origin := recorder.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected wildcard origin, got %q", origin)
	}
	if credentials := recorder.Header().Get("Access-Control-Allow-Credentials"); credentials != "true" {
		t.Errorf("Expected credentials allowed, got %q", credentials)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/accounts", "/me", "/admin/users", "/bank/status", "/agent/status"} {
		recorder := env.request(t, http.MethodGet, path, nil, nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %s, got %d", path, recorder.Code)
			continue
		}
		if detail(t, recorder) != "Could not validate credentials" {
			t.Errorf("Expected credential detail for %s, got %s", path, recorder.Body.String())
		}
		if recorder.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("Expected WWW-Authenticate header for %s", path)
		}
	}
}
