// Package main is the entry point for the FinMetrix stock dashboard backend.
// The application fetches market data from upstream providers, normalizes it
// into canonical records, and serves chart-ready payloads to the browser
// dashboard over a REST and WebSocket API.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finmetrix/finmetrix/internal/config"
	"github.com/finmetrix/finmetrix/internal/di"
	"github.com/finmetrix/finmetrix/internal/scheduler"
	"github.com/finmetrix/finmetrix/internal/server"
	"github.com/finmetrix/finmetrix/pkg/logger"
)

// cleanupSchedule runs the cache cleanup nightly at 04:00.
const cleanupSchedule = "0 0 4 * * *"

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting FinMetrix")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire all dependencies using DI container
	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.CacheDB.Close()

	// Schedule background jobs (cache cleanup, optional snapshot uploads)
	sched := scheduler.New(log)
	if err := sched.AddJob(cleanupSchedule, jobs.CleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache cleanup job")
	}
	if jobs.SnapshotJob != nil {
		if err := sched.AddJob(cfg.Snapshot.Schedule, jobs.SnapshotJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule snapshot job")
		}
	}
	sched.Start()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		DataDir: cfg.DataDir,
	}, container, log)

	// Start server in goroutine so shutdown signals can be handled below
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()
	sched.Stop()

	// Graceful shutdown with a 10-second deadline for in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
