package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/Dsharma2002/FitGenie-AI/internal/api"
	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/consumer"
	"github.com/Dsharma2002/FitGenie-AI/internal/deadletter"
	"github.com/Dsharma2002/FitGenie-AI/internal/enrichment"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/backend"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
	"github.com/Dsharma2002/FitGenie-AI/internal/provider"
)

func main() {
	os.Exit(run())
}

// run wires and starts the consumer. It returns the process exit code once every deferred
// close has run.
func run() int {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open recommendation store", "error", err)
		return 1
	}
	defer closeStore()

	dlqPool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres for dead letters", "error", err)
		return 1
	}
	defer dlqPool.Close()

	client, err := provider.NewClient(cfg.ProviderURL, cfg.ProviderAPIKey, provider.WithLogger(log))
	if err != nil {
		log.Error("invalid provider configuration", "error", err)
		return 1
	}

	pipeline, err := enrichment.NewPipeline(enrichment.PipelineConfig{
		Provider: client,
		Store:    store,
		Timeout:  cfg.ProviderTimeout,
		Logger:   log,
	})
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		return 1
	}

	handler := consumer.NewEnrichmentHandler(pipeline, log)
	sink := deadletter.NewWriter(dlqPool, cfg.DLQBaseDelay)

	metricsSrv := api.NewMetricsServer(cfg.MetricsAddress)
	go func() {
		log.Info("consumer metrics listening", "address", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	// Readers in the same group split the topic's partitions between them.
	procs := make([]runner, 0, cfg.ConsumerWorkers)
	for worker := range cfg.ConsumerWorkers {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           cfg.ConsumerTopic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})
		defer reader.Close()
		procs = append(procs, consumer.NewProcessor(reader, handler,
			consumer.WithLogger(log.With("worker", worker)),
			consumer.WithDeadLetterSink(sink),
		))
	}
	log.Info("consumer started", "topic", cfg.ConsumerTopic, "group", cfg.ConsumerGroupID, "workers", cfg.ConsumerWorkers)

	runErr := runProcessors(ctx, procs)
	log.Info("consumer shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown error", "error", err)
	}
	if runErr != nil {
		log.Error("consumer stopped with error", "error", runErr)
		return 1
	}
	return 0
}

type runner interface {
	Run(ctx context.Context) error
}

// runProcessors blocks until ctx ends or a processor fails. A failure cancels the others and is returned.
func runProcessors(ctx context.Context, procs []runner) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, proc := range procs {
		g.Go(func() error {
			err := proc.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
