// Package main is the entry point for the stockledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockledger/internal/domain/alerting"
	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/reorder"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/valuation"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
	"stockledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockledger server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	movementRepo := postgres.NewMovementRepo(txManager)
	catalogRepo := postgres.NewCatalogRepo(txManager)
	requisitionRepo := postgres.NewRequisitionRepo(txManager)
	alertRepo := postgres.NewAlertRepo(txManager)

	// --- Alert rules ---
	rules, err := alerting.NewEngine(getEnv("CRITICAL_ALERT_RULE", alerting.DefaultCriticalExpr))
	if err != nil {
		log.Fatalw("invalid critical alert rule", "error", err)
	}

	// --- Services ---
	kardexService := kardex.NewService(movementRepo, catalogRepo)
	valuationService := valuation.NewService(movementRepo, catalogRepo)
	reorderService := reorder.NewService(movementRepo, catalogRepo, alertRepo, rules)

	numbers := numerator.New(requisitionRepo, numerator.DefaultConfig())
	generator := reorder.NewGenerator(requisitionRepo, alertRepo, numbers)

	exporter, err := reports.NewExporter()
	if err != nil {
		log.Fatalw("failed to create exporter", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		Logger:    log,
		Kardex:    kardexService,
		Valuation: valuationService,
		Reorder:   reorderService,
		Generator: generator,
		Exporter:  exporter,
		Catalog:   catalogRepo,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
