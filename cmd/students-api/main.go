// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration (DATASTORE_URI is required, everything else defaults)
//  2. Initialise the logger
//  3. Connect to the datastore (MongoDB or SQLite, chosen by the uri)
//  4. Build the router: routes + middleware
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the datastore
//
// RUNNING THE SERVER:
//
//	DATASTORE_URI=mongodb://localhost:27017 go run ./cmd/students-api
//
// or with a config file:
//
//	go run ./cmd/students-api --config=config/local.yaml
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/server"
	"github.com/aanand-mishra/students-api/internal/storage"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad exits the process when DATASTORE_URI is missing.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the default logger, so install ours globally.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.1.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The concrete backend is hidden behind storage.Storage; handlers
	// never know which one they talk to.
	db, err := storage.Open(context.Background(), cfg.Storage)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("uri", storage.Redact(cfg.Storage.URI)),
		slog.String("database", cfg.Storage.Database))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	srv := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: server.NewRouter(db, log, cfg.HTTPServer.AllowedOrigins),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown.
		if err := srv.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	// In-flight requests get 5 seconds, then the datastore pool is closed.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
	}

	if err := db.Close(ctx); err != nil {
		log.Error("failed to close storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
