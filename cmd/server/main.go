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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"banking-backend-go/internal/auth"
	"banking-backend-go/internal/common"
	"banking-backend-go/internal/config"
	"banking-backend-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	seedFile := flag.String("seed", "", "Optional path to seed.yaml with demo users and accounts (default: SEED_FILE env var)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting Banking Backend")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	seedPath := *seedFile
	if seedPath == "" {
		seedPath = cfg.Database.SeedFile
	}
	if seedPath != "" {
		seed, err := common.LoadSeedConfig(seedPath)
		if err != nil {
			zap.L().Fatal("Failed to load seed file", zap.String("file", seedPath), zap.Error(err))
		}
		if _, err := common.ApplySeed(ctx, services.Db, services.Db, services.Bank, seed); err != nil {
			zap.L().Fatal("Failed to apply seed data", zap.Error(err))
		}
	}

	cache := auth.NewIdentityCache(cfg.Redis)
	if cache != nil {
		defer cache.Close()
		zap.L().Info("Identity cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	resolver := auth.NewResolver(cfg.Auth, services.Db, cache)

	router := server.NewRouter(cfg.Server, server.Dependencies{
		Ledger:   services.Ledger,
		Identity: services.Db,
		Resolver: resolver,
		Cache:    cache,
		Bank:     services.Bank,
		Agent:    services.Agent,
		Auth:     cfg.Auth,
	})

	srv := server.New(cfg.Server, router)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zap.L().Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
	} else {
		zap.L().Info("Server stopped gracefully")
	}
}
