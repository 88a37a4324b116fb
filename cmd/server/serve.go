package main

import (
	"context"
	"document-archive/internal/cache"
	"document-archive/internal/db"
	"document-archive/internal/metrics"
	"document-archive/internal/scheduler"
	"document-archive/internal/validation"
	"document-archive/internal/worker"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func getServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Connect to database
	gdb, err := db.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	// Migrate database schema
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	// Seed the administrator (for development)
	if !cfg.IsProduction() {
		if _, err := db.SeedAdmin(gdb, logger, cfg.AdminEmail); err != nil {
			logger.Warn("Admin seed failed", zap.Error(err))
		}
	}

	// Initialize Redis
	redisClient := cache.Connect(ctx, cfg.RedisAddress, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	index := openIndex(cfg, logger)
	if index != nil {
		defer index.Close()
	}

	pool := worker.NewWorkerPool(cfg.WorkerCount, logger)
	defer pool.Shutdown()

	if err := validation.Register(); err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := newServices(cfg, logger, infra{
		db:      gdb,
		cache:   cache.New(redisClient, logger),
		index:   index,
		files:   openFileStore(ctx, cfg, logger),
		pool:    pool,
		metrics: m,
	})

	if index != nil {
		jobs, err := scheduler.New(cfg.ReindexSchedule, svc.documents, m.Indexed, logger)
		if err != nil {
			return fmt.Errorf("invalid REINDEX_SCHEDULE %q: %w", cfg.ReindexSchedule, err)
		}
		jobs.Start()
		defer jobs.Stop()
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newRouter(cfg, logger, svc),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	logger.Info("Server shutdown complete")
	return nil
}
