package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/events"
	"github.com/simlens/simlens/internal/handlers"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/router"
	"github.com/simlens/simlens/internal/services"
	"github.com/simlens/simlens/internal/source"
	"github.com/simlens/simlens/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	handlers.Version = Version
	logger.Info("simlens starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create directories", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset session over the simulator output
	opts := dataset.Options{
		DateColumn:  cfg.Source.DateColumn,
		DateLayout:  cfg.Source.DateLayout,
		AgentColumn: cfg.Source.AgentColumn,
	}
	session := source.NewSession(source.NewFileSource(cfg.Source.CSVPath, opts), logger)

	if err := source.WaitForFile(ctx, cfg.Source.CSVPath, cfg.Source.WaitTimeout, cfg.Source.PollInterval); err != nil {
		// not fatal: the run may not have started yet
		logger.Warn("Simulation output not available yet", "path", cfg.Source.CSVPath, "error", err)
	} else if err := session.Reload(ctx); err != nil {
		logger.Warn("Initial dataset load failed", "path", cfg.Source.CSVPath, "error", err)
	}

	// Run-completion events
	logger.Info("Connecting to event bus", "type", cfg.Events.Type, "subject", cfg.Events.Subject)
	bus, err := events.NewBus(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", "error", err)
	}
	defer func() { _ = bus.Close() }()

	recompute := services.NewRecompute(logger, session, bus, cfg.Source)
	if err := recompute.Start(ctx); err != nil {
		logger.Fatal("Failed to subscribe to run events", "error", err)
	}

	// File changes are announced on the bus like finished runs
	var watcher *source.Watcher
	if cfg.Source.Watch {
		watcher, err = source.NewWatcher(cfg.Source.CSVPath, 0, recompute.OnFileChange, logger)
		if err != nil {
			logger.Fatal("Failed to start file watcher", "error", err)
		}
		watcher.Start(ctx)
	}

	// Periodic refresh
	if cfg.Source.RefreshInterval > 0 {
		go source.NewRefresher(session, cfg.Source.RefreshInterval, logger).Run(ctx)
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, session, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("File watcher stop failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
