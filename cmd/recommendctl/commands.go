package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Dsharma2002/FitGenie-AI/internal/deadletter"
	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/enrichment"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/memory"
	"github.com/Dsharma2002/FitGenie-AI/internal/provider"
)

var (
	activityPath string
	payloadPath  string
	batchSize    int
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt composed for an activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		activity, err := loadActivity(activityPath)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), enrichment.ComposePrompt(activity))
		return err
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build the recommendation a saved provider answer would produce",
	RunE: func(cmd *cobra.Command, args []string) error {
		activity, err := loadActivity(activityPath)
		if err != nil {
			return err
		}
		raw, err := readInput(payloadPath)
		if err != nil {
			return err
		}
		return runExtract(cmd.OutOrStdout(), activity, string(raw), output)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Call the provider for an activity and print the recommendation without storing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		activity, err := loadActivity(activityPath)
		if err != nil {
			return err
		}
		client, err := provider.NewClient(cfg.ProviderURL, cfg.ProviderAPIKey, provider.WithLogger(log))
		if err != nil {
			return err
		}
		rec, err := runAnalyze(commandContext(cmd), client, activity)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), output, rec)
	},
}

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and replay dead-lettered activities",
}

var dlqReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay one batch of due dead-letter entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()

		producer := deadletter.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		manager := deadletter.NewManager(pool, producer, cfg.DLQMaxRetries, cfg.DLQBaseDelay, log)
		processed, err := manager.RunOnce(ctx, batchSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d dead-letter entries\n", processed)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{promptCmd, extractCmd, analyzeCmd} {
		c.Flags().StringVarP(&activityPath, "activity", "a", "", "Path to an activity event JSON file, or - for stdin")
		_ = c.MarkFlagRequired("activity")
	}
	extractCmd.Flags().StringVarP(&payloadPath, "payload", "p", "", "Path to a saved provider response body")
	_ = extractCmd.MarkFlagRequired("payload")

	dlqReplayCmd.Flags().IntVar(&batchSize, "batch", 50, "Maximum entries to replay")
	dlqCmd.AddCommand(dlqReplayCmd)
}

// runExtract mirrors the pipeline's extract and build steps without calling the provider.
func runExtract(w io.Writer, activity domain.Activity, raw, format string) error {
	analysis, err := enrichment.Extract(raw)
	if err != nil {
		log.Warn("extraction failed, fallback recommendation used", "activity_id", activity.ID, "error", err)
	}
	rec := enrichment.NewBuilder().Build(activity, analysis, err)
	return render(w, format, rec)
}

// runAnalyze drives the full pipeline against an in-memory store so nothing is persisted.
func runAnalyze(ctx context.Context, client enrichment.Provider, activity domain.Activity) (domain.Recommendation, error) {
	pipeline, err := enrichment.NewPipeline(enrichment.PipelineConfig{
		Provider: client,
		Store:    memory.NewStore(),
		Timeout:  cfg.ProviderTimeout,
		Logger:   log,
	})
	if err != nil {
		return domain.Recommendation{}, err
	}
	return pipeline.Process(ctx, activity)
}
