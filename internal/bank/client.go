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

// Package bank talks to the partner bank's REST API. Customer records on
// our side reference bank customers by an opaque customer OID that this
// client mints at registration time.
package bank

import (
	"banking-backend-go/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const connectionCheckTimeout = 5 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg models.BankConfig) (*Client, error) {
	httpClient, err := newHTTPClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
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

// RegisterCustomer creates a customer record at the bank. The customer OID
// is minted here, not by the bank, so a successful result always carries it.
func (c *Client) RegisterCustomer(ctx context.Context, name string) *models.BankResult {
	customerOID := uuid.New().String()

	status, body, err := c.do(ctx, http.MethodPost, "/register-customer", map[string]any{
		"name":         name,
		"customer_oid": customerOID,
	})
	if err != nil {
		zap.L().Warn("Bank registration failed",
			zap.String("name", name),
			zap.Error(err))
		return &models.BankResult{Status: models.BankStatusError, Error: err.Error()}
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return &models.BankResult{
			Status: models.BankStatusError,
			Error:  fmt.Sprintf("bank API error: %d", status),
		}
	}

	return &models.BankResult{
		Status:      models.BankStatusSuccess,
		CustomerOID: customerOID,
		Data:        body,
	}
}

// GetCustomerPortfolio fetches the bank-side portfolio for a customer OID.
// A 404 from the bank is a distinct outcome, not an error.
func (c *Client) GetCustomerPortfolio(ctx context.Context, customerOID string) *models.BankResult {
	status, body, err := c.do(ctx, http.MethodGet, "/user-portfolio/"+customerOID, nil)
	if err != nil {
		return &models.BankResult{Status: models.BankStatusError, Error: err.Error()}
	}

	switch {
	case status == http.StatusNotFound:
		return &models.BankResult{Status: models.BankStatusNotFound}
	case status != http.StatusOK:
		return &models.BankResult{
			Status: models.BankStatusError,
			Error:  fmt.Sprintf("bank API error: %d", status),
		}
	}

	return &models.BankResult{Status: models.BankStatusSuccess, Data: body}
}

// CheckCustomerExists asks the bank whether it still knows a customer OID.
func (c *Client) CheckCustomerExists(ctx context.Context, customerOID string) *models.BankResult {
	status, body, err := c.do(ctx, http.MethodGet, "/customer/"+customerOID+"/exists", nil)
	if err != nil {
		return &models.BankResult{Status: models.BankStatusError, Error: err.Error()}
	}

	if status != http.StatusOK {
		return &models.BankResult{
			Status: models.BankStatusError,
			Error:  fmt.Sprintf("bank API error: %d", status),
		}
	}

	return &models.BankResult{Status: models.BankStatusSuccess, Data: body}
}

// GetAllCustomers lists every customer record the bank holds.
func (c *Client) GetAllCustomers(ctx context.Context) *models.BankResult {
	status, body, err := c.do(ctx, http.MethodGet, "/customers", nil)
	if err != nil {
		return &models.BankResult{Status: models.BankStatusError, Error: err.Error()}
	}

	if status != http.StatusOK {
		return &models.BankResult{
			Status: models.BankStatusError,
			Error:  fmt.Sprintf("bank API error: %d", status),
		}
	}

	return &models.BankResult{Status: models.BankStatusSuccess, Data: body}
}

// CheckConnection probes the bank's health endpoint with a short deadline
// so a dead bank cannot stall our own health report.
func (c *Client) CheckConnection(ctx context.Context) *models.BankResult {
	ctx, cancel := context.WithTimeout(ctx, connectionCheckTimeout)
	defer cancel()

	status, _, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return &models.BankResult{Status: models.BankStatusDisconnected, Error: err.Error()}
	}

	if status != http.StatusOK {
		return &models.BankResult{
			Status: models.BankStatusDisconnected,
			Error:  fmt.Sprintf("bank API error: %d", status),
		}
	}

	return &models.BankResult{Status: models.BankStatusConnected}
}

// do performs a request against the bank and returns the status code plus
// the decoded body. Bodies that are not JSON are passed through as strings
// since some bank deployments answer errors in plain text.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, any, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("unable to encode bank payload: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.http.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			zap.L().Warn("Failed to close bank response body", zap.Error(err))
		}
	}()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("unable to read bank response: %w", err)
	}

	var decoded any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			decoded = string(raw)
		}
	}

	return response.StatusCode, decoded, nil
}
