package main

import (
	"github.com/couchcryptid/snotel-etl/internal/adapter/render"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	stationsCmd.Flags().String("state", "", "Only list stations in this state, e.g. CO.")
	stationsCmd.Flags().String("format", domain.FormatTable, "Output format: table, csv or json (defaults to OUTPUT_FORMAT).")
	rootCmd.AddCommand(stationsCmd)
}

var stationsCmd = &cobra.Command{
	Use:   "stations [--state XX]",
	Short: "Lists the SNOTEL station directory with each row's index and station id.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		state, err := cmd.Flags().GetString("state")
		if err != nil {
			return err
		}

		html, err := newFetcher().Fetch(cmd.Context(), domain.DirectoryURL)
		if err != nil {
			return err
		}
		records, err := domain.ExtractStations(html)
		if err != nil {
			return err
		}
		logger.Debug("directory extracted", "records", len(records), "state", state)
		return render.Stations(cmd.OutOrStdout(), records, state, format)
	},
}
