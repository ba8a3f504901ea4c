package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/snotel-etl/internal/adapter/wcc"
	"github.com/couchcryptid/snotel-etl/internal/config"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Shared state populated by the root command before any subcommand runs.
var (
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
)

var rootCmd = &cobra.Command{
	Use:           "snotel",
	Short:         "snotel fetches and normalizes NRCS SNOTEL station reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger = observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)
		if metrics == nil {
			metrics = observability.NewMetrics()
		}
		return nil
	},
}

// newFetcher builds the retrying, cached WCC client from configuration.
func newFetcher() *wcc.CachedFetcher {
	client := wcc.NewClient(cfg.FetchTimeout, cfg.FetchRetries, metrics, logger)
	return wcc.NewCachedFetcher(client, cfg.FetchCacheSize, cfg.FetchCacheTTL, metrics)
}

// formatFlag returns the --format flag when set, else OUTPUT_FORMAT.
func formatFlag(cmd *cobra.Command) (string, error) {
	if !cmd.Flags().Changed("format") {
		return cfg.OutputFormat, nil
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	if !domain.ValidFormat(format) {
		return "", fmt.Errorf("invalid --format %q: want table, csv or json", format)
	}
	return format, nil
}
