package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
	"github.com/Dsharma2002/FitGenie-AI/pkg/events"
)

var version = "dev"

var (
	verbose bool
	output  string
	cfg     config.Config
	log     *logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "recommendctl",
	Short:        "Operate the activity recommendation pipeline",
	Long:         "recommendctl renders prompts, dry-runs extraction against saved provider answers, and replays dead letters.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		mode := "production"
		if verbose {
			mode = "development"
		}
		var err error
		log, err = logger.New(mode)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		switch output {
		case "json", "yaml":
			return nil
		default:
			return fmt.Errorf("unsupported output format %q (want json or yaml)", output)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")

	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dlqCmd)
}

// loadActivity reads an activity event from path, or stdin when path is "-".
func loadActivity(path string) (domain.Activity, error) {
	data, err := readInput(path)
	if err != nil {
		return domain.Activity{}, err
	}
	var evt events.ActivityRecorded
	if err := json.Unmarshal(data, &evt); err != nil {
		return domain.Activity{}, fmt.Errorf("decoding activity: %w", err)
	}
	return domain.ActivityFromEvent(evt)
}

func readInput(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("missing input path")
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
