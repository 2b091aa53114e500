// Package main is the entry point for the stockledger background
// worker. It runs the reorder scan on a fixed interval and raises
// stock alerts; requisition generation stays a deliberate operator
// action through the API unless auto-generation is enabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/domain/alerting"
	"stockledger/internal/domain/reorder"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting stockledger worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	movementRepo := postgres.NewMovementRepo(txManager)
	catalogRepo := postgres.NewCatalogRepo(txManager)
	requisitionRepo := postgres.NewRequisitionRepo(txManager)
	alertRepo := postgres.NewAlertRepo(txManager)

	rules, err := alerting.NewEngine(getEnv("CRITICAL_ALERT_RULE", alerting.DefaultCriticalExpr))
	if err != nil {
		log.Fatalw("invalid critical alert rule", "error", err)
	}

	scanner := reorder.NewService(movementRepo, catalogRepo, alertRepo, rules)
	numbers := numerator.New(requisitionRepo, numerator.DefaultConfig())
	generator := reorder.NewGenerator(requisitionRepo, alertRepo, numbers)

	worker := &ScanWorker{
		scanner:      scanner,
		generator:    generator,
		log:          log,
		interval:     getEnvDuration("REORDER_SCAN_INTERVAL", 15*time.Minute),
		autoGenerate: getEnv("REORDER_AUTOGENERATE", "false") == "true",
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// ScanWorker runs periodic reorder scans.
type ScanWorker struct {
	scanner      *reorder.Service
	generator    *reorder.Generator
	log          *logger.Logger
	interval     time.Duration
	autoGenerate bool
}

// Run executes scans until the context is cancelled. The first scan
// fires immediately.
func (w *ScanWorker) Run(ctx context.Context) {
	w.log.Infow("reorder scan loop started",
		"interval", w.interval,
		"auto_generate", w.autoGenerate,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ScanWorker) scan(ctx context.Context) {
	candidates, err := w.scanner.Scan(ctx, reorder.ScanParams{})
	if err != nil {
		w.log.Errorw("reorder scan failed", "error", err)
		return
	}

	created, err := w.scanner.RaiseAlerts(ctx, candidates)
	if err != nil {
		w.log.Errorw("raising alerts failed", "error", err)
		return
	}

	w.log.Infow("reorder scan complete",
		"candidates", len(candidates),
		"alerts_created", created,
	)

	if !w.autoGenerate || len(candidates) == 0 {
		return
	}
	requisitions, err := w.generator.Generate(ctx, candidates, entity.OriginAutomatic)
	if err != nil {
		w.log.Errorw("requisition generation failed", "error", err)
		return
	}
	for _, req := range requisitions {
		w.log.Infow("requisition generated",
			"number", req.Number,
			"warehouse_id", req.WarehouseID.String(),
			"lines", len(req.Lines),
		)
	}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
