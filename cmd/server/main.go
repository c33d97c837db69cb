/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift reconciliation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment config, then apply command-line overrides
  2. Build zap logger
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT                  8080
  DB_PATH               shifts.db
  LOG_LEVEL             info (debug|info|warn|error)
  CORS_ALLOWED_ORIGINS  comma-separated
  DEFAULT_LOCALE        en (en|he)
  MORNING_CUT_OFF_HOUR  12

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/shifts.db"
  LOG_LEVEL=debug ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/shift-reconciler/api"
	"github.com/warp/shift-reconciler/config"
	"github.com/warp/shift-reconciler/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("db", *dbPath), zap.Error(err))
	}
	defer store.Close()

	// Initialize handler
	handler, err := api.NewHandler(store, logger, api.Options{
		DefaultLocale:     cfg.DefaultLocale,
		MorningCutOffHour: cfg.MorningCutOffHour,
	})
	if err != nil {
		logger.Fatal("failed to initialize handler", zap.Error(err))
	}

	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("db", *dbPath),
			zap.String("locale", cfg.DefaultLocale))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
