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

package api

import (
	"context"
	"fmt"

	"banking-backend-go/internal/agent"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/store"
)

// LedgerService carries the account and transfer operations exposed over
// the HTTP API. The bank and agent clients are optional; a nil client
// disables the corresponding integration.
type LedgerService struct {
	db       store.LedgerStore
	identity store.IdentityStore
	bank     *bank.Client
	agent    *agent.Client
}

func NewLedgerService(db store.LedgerStore, identity store.IdentityStore, bankClient *bank.Client, agentClient *agent.Client) *LedgerService {
	return &LedgerService{
		db:       db,
		identity: identity,
		bank:     bankClient,
		agent:    agentClient,
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	_, err := s.identity.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (s *LedgerService) notifyAgent(operation string, data map[string]any) {
	if s.agent == nil {
		return
	}
	s.agent.Notify(operation, data)
}
