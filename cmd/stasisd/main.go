// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command stasisd starts the stasis reference backend HTTP server.
//
// It reads configuration from environment variables and serves the
// client contract plus the cron and metrics routes.
//
// # Environment Variables
//
//   - STASISD_ADDR: listen address (default: :8420)
//   - STASISD_CRON_API_KEY: shared secret for /cron/damage (default: dev key)
//   - STASISD_SYNC_RATE_PER_MINUTE: /cron/sync cap (default: 6)
//   - STASISD_LOG_LEVEL: debug, info, warn, error (default: info)
//   - OTEL_TRACES_EXPORTER: "stdout" to print spans, "none" to disable
//
// # Usage
//
//	# Build
//	go build -o stasisd ./cmd/stasisd
//
//	# Run
//	./stasisd
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/StasisPet/pkg/logging"
	"github.com/AleutianAI/StasisPet/services/stasisd"
)

const shutdownGrace = 10 * time.Second

func main() {
	log := logging.New(logging.Config{
		Level:   logging.ParseLevel(getEnvString("STASISD_LOG_LEVEL", "info")),
		Service: "stasisd",
		JSON:    true,
	})
	defer log.Close()

	cfg := stasisd.Config{
		Addr:              getEnvString("STASISD_ADDR", ":8420"),
		CronAPIKey:        getEnvString("STASISD_CRON_API_KEY", "dev-cron-key"),
		SyncRatePerMinute: getEnvInt("STASISD_SYNC_RATE_PER_MINUTE", 6),
		Logger:            log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := stasisd.InitTelemetry(ctx, stasisd.DefaultTelemetryConfig())
	if err != nil {
		log.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}

	server := stasisd.NewServer(cfg)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("stasisd starting", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("stasisd shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return shutdownTelemetry(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("stasisd exited with error", "error", err)
		log.Close()
		os.Exit(1)
	}
	log.Info("stasisd stopped")
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
