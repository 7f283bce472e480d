package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bnpl/internal/api"
	"bnpl/internal/config"
	"bnpl/internal/quotation"
	"bnpl/internal/storage"
	"bnpl/internal/stellar"

	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🚀 Starting BNPL Checkout API...")

	// 1. Load configuration
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// 2. Configure logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"storage", cfg.StorageDriver,
		"stellar", cfg.StellarMode,
		"network", cfg.Network,
		"environment", cfg.Environment,
	)

	// 3. Initialize the contract store
	ctx := context.Background()
	repository, err := newRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer repository.Close()
	slog.Info("Contract store ready", "driver", cfg.StorageDriver)

	// 4. Initialize the ledger gateway
	gateway := newGateway(cfg)

	// 5. Build the API server
	quotes := quotation.NewEngine(cfg.Currency)
	server := api.NewServer(repository, gateway, quotes, api.Options{
		Port:                cfg.Port,
		Development:         cfg.Development(),
		PaymentSourceSecret: cfg.PaymentSourceSecret,
	})

	// 6. Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		slog.Warn("Interrupt received, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error shutting down server", "error", err)
		}
	case err := <-errChan:
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}

// newRepository selects the contract store from configuration
func newRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		return storage.NewSQLiteRepository(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		return storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
	default:
		return storage.NewMemoryRepository(), nil
	}
}

// newGateway selects the ledger gateway from configuration
func newGateway(cfg *config.Config) stellar.Gateway {
	if cfg.StellarMode == config.StellarModeHorizon {
		return stellar.NewHorizonGateway(cfg.HorizonURL, cfg.FriendbotURL, cfg.Network, cfg.NetworkPassphrase())
	}
	return stellar.NewMockGateway(cfg.Network)
}
