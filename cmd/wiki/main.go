package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freelawproject/wiki/internal/logger"
	"github.com/freelawproject/wiki/pkg/config"
	"github.com/freelawproject/wiki/pkg/wiki"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	syncViews := flag.Bool("sync-views", false, "Fold buffered view tallies into page counters and exit")
	healthcheck := flag.Bool("healthcheck", false, "Check store health and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// CLI flag overrides the configured log level
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Wiki - hierarchical content server")
	logger.Info("Log level set to: %s", level)
	logger.Info("Content store: %s", cfg.Store.Type)
	logger.Info("Attachment store: %s", cfg.Attachments.Type)

	store, err := config.CreateContentStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close content store: %v", err)
		}
	}()

	blobs, err := config.CreateBlobStore(ctx, &cfg.Attachments)
	if err != nil {
		log.Fatalf("Failed to create attachment store: %v", err)
	}

	engine := wiki.NewEngine(store)

	// One-shot maintenance modes
	if *healthcheck {
		if err := store.Healthcheck(ctx); err != nil {
			log.Fatalf("Content store healthcheck failed: %v", err)
		}
		if err := blobs.Healthcheck(ctx); err != nil {
			log.Fatalf("Attachment store healthcheck failed: %v", err)
		}
		logger.Info("Healthcheck passed")
		return
	}

	if *syncViews {
		updated, err := engine.SyncViewCounts(ctx)
		if err != nil {
			log.Fatalf("View count sync failed: %v", err)
		}
		logger.Info("View count sync complete: %d pages updated", updated)
		return
	}

	// Background view count sync loop
	syncDone := make(chan struct{})
	if cfg.Server.ViewSyncInterval > 0 {
		go runViewSync(ctx, engine, cfg.Server.ViewSyncInterval, syncDone)
		logger.Info("View sync interval: %v", cfg.Server.ViewSyncInterval)
	} else {
		close(syncDone)
		logger.Info("Background view sync disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Wiki engine is running. Press Ctrl+C to stop.")
	<-sigChan

	logger.Info("Shutdown signal received, initiating graceful shutdown...")
	cancel()

	select {
	case <-syncDone:
	case <-time.After(cfg.Server.ShutdownTimeout):
		logger.Warn("Shutdown timeout reached before view sync loop stopped")
	}

	// Flush any remaining tallies before closing the store.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer flushCancel()
	if updated, err := engine.SyncViewCounts(flushCtx); err != nil {
		logger.Error("Final view count sync failed: %v", err)
	} else if updated > 0 {
		logger.Info("Final view count sync: %d pages updated", updated)
	}

	logger.Info("Server stopped gracefully")
}

// runViewSync periodically folds buffered view tallies into the persistent
// counters until the context is cancelled.
func runViewSync(ctx context.Context, engine *wiki.Engine, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updated, err := engine.SyncViewCounts(ctx)
			if err != nil {
				logger.Error("View count sync failed: %v", err)
				continue
			}
			if updated > 0 {
				logger.Debug("View count sync: %d pages updated", updated)
			}
		}
	}
}
