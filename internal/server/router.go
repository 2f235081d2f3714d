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

package server

import (
	"banking-backend-go/internal/agent"
	"banking-backend-go/internal/api"
	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/bank"
	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"github.com/gin-gonic/gin"
)

// Dependencies collects everything the HTTP layer needs. Bank, Agent and
// Cache may be nil; the affected endpoints then answer in degraded form.
type Dependencies struct {
	Ledger   *api.LedgerService
	Identity store.IdentityStore
	Resolver *auth.Resolver
	Cache    *auth.IdentityCache
	Bank     *bank.Client
	Agent    *agent.Client
	Auth     models.AuthConfig
}

type handlers struct {
	Dependencies
}

// NewRouter builds the gin engine with all routes attached. Authentication
// is enforced per group; /register, the login endpoints and /health stay
// public.
func NewRouter(cfg models.ServerConfig, deps Dependencies) *gin.Engine {
	h := &handlers{Dependencies: deps}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.AllowedOrigins))

	engine.POST("/register", h.register)
	engine.POST("/token", h.tokenLogin)
	engine.POST("/login", h.jsonLogin)
	engine.POST("/logout", h.logout)
	engine.GET("/health", h.health)

	protected := engine.Group("/")
	protected.Use(auth.RequireUser(deps.Resolver))
	{
		protected.GET("/me", h.currentUser)

		protected.GET("/accounts", h.listAccounts)
		protected.GET("/accounts/:account_id", h.getAccount)
		protected.GET("/accounts/:account_id/balance", h.getBalance)
		protected.GET("/accounts/:account_id/transactions", h.listTransactions)
		protected.POST("/transfer", h.transfer)

		protected.GET("/admin/users", h.listUsers)

		protected.POST("/bank/sync", h.syncWithBank)
		protected.GET("/bank/portfolio", h.bankPortfolio)
		protected.GET("/bank/status", h.bankStatus)
		protected.GET("/bank/customers", h.bankCustomers)

		protected.GET("/agent/status", h.agentStatus)
		protected.POST("/agent/query", h.agentQuery)
		protected.POST("/config", h.updateConfig)
	}

	return engine
}
