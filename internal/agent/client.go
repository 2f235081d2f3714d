// Package agent forwards banking events to the operations agent over
// its MCP-style HTTP surface. The agent is an optional collaborator:
// every method degrades to a status map instead of failing the caller.
package agent

import (
	"banking-backend-go/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

type Client struct {
	mu      sync.RWMutex
	baseURL string

	http    *http.Client
	timeout time.Duration
}

func NewClient(cfg models.AgentConfig) (*Client, error) {
	httpClient, err := newHTTPClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		timeout: cfg.Timeout,
	}, nil
}

func newHTTPClient(timeout time.Duration) (*http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			DualStack: true,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// BaseURL returns the agent endpoint currently in use.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL repoints the client at a different agent endpoint. Requests
// already in flight keep the endpoint they started with.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()
}

// Call sends an operation to the agent and returns its response. When the
// agent cannot be reached the event is dropped and a map with status
// "unavailable" is returned so callers never block on the agent.
func (c *Client) Call(ctx context.Context, operation string, data map[string]any) map[string]any {
	payload := map[string]any{
		"operation": operation,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    "banking_backend",
	}

	response, err := c.post(ctx, "/mcp/call", payload)
	if err != nil {
		zap.L().Warn("Agent unavailable",
			zap.String("operation", operation),
			zap.Error(err))
		return map[string]any{
			"status":    "unavailable",
			"operation": operation,
			"data":      data,
		}
	}

	return response
}

// Notify sends an operation to the agent without waiting for the answer.
// Used for telemetry that must not add latency to the request path.
func (c *Client) Notify(operation string, data map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		c.Call(ctx, operation, data)
	}()
}

// Status reports the agent's own health endpoint.
func (c *Client) Status(ctx context.Context) map[string]any {
	response, err := c.get(ctx, "/mcp/status")
	if err != nil {
		zap.L().Warn("Agent status check failed", zap.Error(err))
		return map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		}
	}

	return response
}

// Query forwards a free-form question to the agent.
func (c *Client) Query(ctx context.Context, query string) map[string]any {
	response, err := c.post(ctx, "/mcp/query", map[string]any{"query": query})
	if err != nil {
		zap.L().Warn("Agent query failed", zap.Error(err))
		return map[string]any{
			"status": "query_unavailable",
			"query":  query,
		}
	}

	return response
}

func (c *Client) post(ctx context.Context, path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to encode agent payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	return c.do(request)
}

func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(request)
}

func (c *Client) do(request *http.Request) (map[string]any, error) {
	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			zap.L().Warn("Failed to close agent response body", zap.Error(err))
		}
	}()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("agent returned status %d", response.StatusCode)
	}

	decoded := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("unable to decode agent response: %w", err)
	}

	return decoded, nil
}
