package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/snotel-etl/internal/adapter/render"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	normalizeCmd.Flags().String("format", domain.FormatTable, "Output format: table, csv or json (defaults to OUTPUT_FORMAT).")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalizes a saved report CSV (or stdin) to canonical column names.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open report: %w", err)
			}
			defer f.Close()
			in = f
		}
		text, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}

		table, err := domain.NormalizeCSV(string(text))
		if err != nil {
			return err
		}
		return render.Table(cmd.OutOrStdout(), table, format)
	},
}
