package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/Skufu/liverscreen/internal/config"
	"github.com/Skufu/liverscreen/internal/logging"
	"github.com/Skufu/liverscreen/internal/server"
	"github.com/Skufu/liverscreen/internal/store"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API (default)",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logging.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	logger := logging.Logger(logging.SourceApp)

	st, db, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.ModelDataPath != "" {
		if err := seedIfEmpty(ctx, st, cfg.ModelDataPath); err != nil {
			logger.Warn("failed to seed model evaluation", "path", cfg.ModelDataPath, "error", err)
		}
	}

	router := server.NewRouter(st, db, server.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		StaticRoot:     server.DetectStaticRoot(cfg.StaticDir),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	logger.Info("server listening", "addr", srv.Addr, "db", cfg.EnableDB)
	return waitForShutdown(ctx, srv, serveErr)
}

// openStore returns the store the API writes to and, when the database is
// enabled, the pool used for readiness checks. Without a database everything
// lives in memory.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, server.HealthChecker, func(), error) {
	if !cfg.EnableDB {
		return store.NewMemory(), nil, func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := store.MigrateUp(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, nil, err
		}
	}

	pg, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	st := store.NewFallback(pg, store.NewMemory(), logging.Logger(logging.SourceDB))
	return st, pg, pg.Close, nil
}

func waitForShutdown(ctx context.Context, srv *http.Server, serveErr <-chan error) error {
	logger := logging.Logger(logging.SourceApp)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
