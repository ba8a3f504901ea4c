package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/snotel-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/snotel-etl/internal/adapter/kafka"
	"github.com/couchcryptid/snotel-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the scheduled pipeline with health, metrics and report endpoints.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		useServiceLogger()

		opts := pipeline.DefaultOptions()
		opts.StationIndex = cfg.StationIndex
		opts.Interval = cfg.PollInterval

		// Kafka publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
		var loader pipeline.Loader
		var writer *kafkaadapter.Writer
		if cfg.KafkaEnabled {
			writer = kafkaadapter.NewWriter(cfg, logger)
			loader = writer
			logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
		} else {
			logger.Info("kafka publishing disabled")
		}

		p := pipeline.New(newFetcher(), pipeline.NewTransformer(logger), loader, opts, logger, metrics)
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Start HTTP server.
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()

		// Start scheduled pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()

		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if writer != nil {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// useServiceLogger replaces the stderr CLI logger with the shared service
// logger. serve renders nothing on stdout, so logs go there as in the other
// storm-data services.
func useServiceLogger() {
	logger = sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}
