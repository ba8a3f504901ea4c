// Package render writes canonical tables and station directories for humans
// and for downstream scripts.
package render

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes an ObservationTable in one of the domain output formats,
// keeping column order.
func Table(w io.Writer, t domain.ObservationTable, format string) error {
	switch format {
	case domain.FormatTable:
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(toRow(t.Header()))
		for _, r := range t.Rows() {
			tw.AppendRow(toRow(r))
		}
		tw.Render()
		return nil
	case domain.FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		if err := cw.WriteAll(t.Rows()); err != nil {
			return fmt.Errorf("write csv rows: %w", err)
		}
		return nil
	case domain.FormatJSON:
		header := t.Header()
		out := make([]map[string]string, 0, t.RowCount())
		for _, r := range t.Rows() {
			obj := make(map[string]string, len(header))
			for i, name := range header {
				obj[name] = r[i]
			}
			out = append(out, obj)
		}
		return writeJSON(w, out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Stations writes directory records with their derived station ids. A
// non-empty state keeps only records of that state; the index column always
// holds the record's position in the full directory.
func Stations(w io.Writer, records []domain.StationRecord, state, format string) error {
	header := []string{"index", "ntwk", "state", "site_name", "station_id", "ts", "start", "lat", "lon", "elev", "county", "huc"}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		if state != "" && !strings.EqualFold(strings.TrimSpace(r.State), state) {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(i), r.Network, r.State, r.SiteName, string(domain.DeriveStationID(r)),
			r.TS, r.Start, r.Lat, r.Lon, r.Elev, r.County, r.HUC,
		})
	}

	cols := make([]domain.Column, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		for i := range rows {
			values[i] = rows[i][j]
		}
		cols[j] = domain.Column{Name: name, Values: values}
	}
	return Table(w, domain.ObservationTable{Columns: cols}, format)
}

// Loader renders each station report's canonical table to a writer.
type Loader struct {
	w      io.Writer
	format string
}

// NewLoader creates a Loader. The format is checked on first use.
func NewLoader(w io.Writer, format string) *Loader {
	return &Loader{w: w, format: format}
}

func (l *Loader) Load(_ context.Context, report domain.StationReport) error {
	return Table(l.w, report.Table, l.format)
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
