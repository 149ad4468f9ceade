// SecureStay - booking risk evaluation for hotel checkout.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/api"
	"github.com/Osaseye/SECURE-STAY/internal/bus"
	"github.com/Osaseye/SECURE-STAY/internal/domain"
	"github.com/Osaseye/SECURE-STAY/internal/feed"
	"github.com/Osaseye/SECURE-STAY/internal/pipeline"
	"github.com/Osaseye/SECURE-STAY/internal/repository"
	"github.com/Osaseye/SECURE-STAY/internal/scorer"
	"github.com/Osaseye/SECURE-STAY/internal/signals"
	"github.com/Osaseye/SECURE-STAY/internal/statestore"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("SECURESTAY_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting securestay",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("SECURESTAY_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	if url := os.Getenv("SECURESTAY_SCORER_URL"); url != "" {
		cfg.Scorer.BaseURL = url
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"state_store", cfg.StateStore.Type,
		"eventbus", cfg.EventBus.Type,
		"scorer", cfg.Scorer.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize StateStore
	state, err := statestore.New(cfg.StateStore)
	if err != nil {
		slog.Error("failed to initialize state store", "error", err)
		os.Exit(1)
	}
	defer state.Close()
	slog.Info("state store initialized", "type", cfg.StateStore.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize pipeline stages
	extractor := signals.New(state, nil)
	scoringClient := scorer.New(cfg.Scorer)
	svc := pipeline.New(extractor, scoringClient, repo, busImpl)
	slog.Info("booking pipeline initialized",
		"scorer_timeout", cfg.Scorer.Timeout,
		"scorer_retries", cfg.Scorer.Retries,
	)

	// Initialize live feed for the dashboard stream
	liveFeed := feed.New(repo, busImpl)

	// Initialize Server
	srv := api.NewServer(cfg.Server, svc, repo, state, busImpl, liveFeed, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("securestay is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("securestay shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  SECURESTAY - Booking Risk Evaluation")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /bookings                    - Submit a booking for evaluation")
	fmt.Println("    GET  /bookings/{ref}              - Look up a booking by reference")
	fmt.Println("    GET  /admin/bookings              - List all bookings")
	fmt.Println("    GET  /admin/bookings/{id}         - Get a booking by record ID")
	fmt.Println("    POST /admin/bookings/{id}/status  - Confirm or reject a booking")
	fmt.Println("    GET  /admin/dashboard             - Aggregate dashboard snapshot")
	fmt.Println("    GET  /admin/stream                - Live dashboard stream (SSE)")
	fmt.Println("    GET  /health                      - Health check")
	fmt.Println()
}
