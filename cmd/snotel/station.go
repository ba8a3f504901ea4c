package main

import (
	"github.com/couchcryptid/snotel-etl/internal/adapter/kafka"
	"github.com/couchcryptid/snotel-etl/internal/adapter/render"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	stationCmd.Flags().Int("index", 4, "Zero-based row of the station directory (defaults to STATION_INDEX).")
	stationCmd.Flags().String("format", domain.FormatTable, "Output format: table, csv or json (defaults to OUTPUT_FORMAT).")
	rootCmd.AddCommand(stationCmd)
}

var stationCmd = &cobra.Command{
	Use:   "station [--index N] [--format table|csv|json]",
	Short: "Fetches one station's latest report and prints the normalized table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		opts := pipeline.DefaultOptions()
		opts.StationIndex = cfg.StationIndex
		if cmd.Flags().Changed("index") {
			if opts.StationIndex, err = cmd.Flags().GetInt("index"); err != nil {
				return err
			}
		}

		loaders := pipeline.Loaders{render.NewLoader(cmd.OutOrStdout(), format)}
		if cfg.KafkaEnabled {
			writer := kafka.NewWriter(cfg, logger)
			defer func() {
				if err := writer.Close(); err != nil {
					logger.Error("kafka writer close error", "error", err)
				}
			}()
			loaders = append(loaders, writer)
		}

		p := pipeline.New(newFetcher(), pipeline.NewTransformer(logger), loaders, opts, logger, metrics)
		report, err := p.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("station processed",
			"station_id", string(report.StationID),
			"state", report.Station.State,
			"url", report.ReportURL,
			"observations", len(report.Observations),
		)
		return nil
	},
}
