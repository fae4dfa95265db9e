package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Dsharma2002/FitGenie-AI/internal/api"
	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/deadletter"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

const defaultDLQBatchSize = 50

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("failed to connect to postgres", "error", err)
	}
	defer pool.Close()

	producer := deadletter.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	manager := deadletter.NewManager(pool, producer, cfg.DLQMaxRetries, cfg.DLQBaseDelay, log)

	metricsSrv := api.NewMetricsServer(cfg.MetricsAddress)
	go func() {
		log.Info("dlq manager metrics listening", "address", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	ticker := time.NewTicker(cfg.DLQPollInterval)
	defer ticker.Stop()

	log.Info("dlq manager started", "interval", cfg.DLQPollInterval, "max_retries", cfg.DLQMaxRetries)

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("dlq manager received shutdown signal")
			break loop
		case <-ticker.C:
			processed, err := manager.RunOnce(ctx, defaultDLQBatchSize)
			if err != nil {
				log.Error("dlq manager error", "error", err)
			} else if processed > 0 {
				log.Info("dlq manager processed entries", "count", processed)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown error", "error", err)
	}
}
