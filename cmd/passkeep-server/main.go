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

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/backend"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/clipboard"
	httphandler "github.com/ericfisherdev/passkeep/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/passkeep/internal/adapter/driving/web"
	"github.com/ericfisherdev/passkeep/internal/application"
	"github.com/ericfisherdev/passkeep/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend", cfg.Backend,
		"clipboard", cfg.Clipboard,
		"encryption_key", cfg.HasEncryptionKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the secure store (runs migrations for sqlite).
	store, err := backend.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()
	slog.Info("secure store opened", "backend", store.Name)

	// 4. Wire services.
	clip := backend.Clipboard(cfg.Clipboard, slog.Default())
	credentialSvc := application.NewCredentialService(store.Store, clip, slog.Default())
	healthSvc := application.NewHealthService(store.Store, slog.Default())

	// 5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(credentialSvc, healthSvc, cfg.PasswordLength, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 6. Create web handler and register GUI routes.
	_, discard := clip.(clipboard.Discard)
	webHandler := webhandler.NewHandler(credentialSvc, cfg.PasswordLength, discard, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Log startup complete.
	slog.Info("passkeep started", "listen_addr", cfg.ListenAddr, "backend", store.Name)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
