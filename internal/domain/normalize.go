package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// commentMarker starts report generator preamble lines.
const commentMarker = '#'

// byteOrderMark is dropped from the start of a report.
const byteOrderMark = "\ufeff"

// ColumnRename maps one report header to its canonical name.
type ColumnRename struct {
	Source    string
	Canonical string
}

// CanonicalColumns is the fixed header mapping for the daily SNOTEL report.
// It is a slice so renames are applied in a stable order.
var CanonicalColumns = []ColumnRename{
	{"Date", "date"},
	{"Station Name", "station_name"},
	{"Station Id", "station_id"},
	{"State Code", "state_code"},
	{"Network Code", "network_code"},
	{"Elevation (ft)", "elevation_ft"},
	{"Latitude", "latitude"},
	{"Longitude", "longitude"},
	{"County Name", "county_name"},
	{"Snow Water Equivalent (in) Start of Day Values", "snow_water_equivalent_in"},
	{"Snow Water Equivalent % of Median (1991-2020)", "snow_water_equivalent_median_percentage"},
	{"Snow Depth (in) Start of Day Values", "snow_depth_in"},
	{"Air Temperature Maximum (degF)", "max_temp_degF"},
	{"Air Temperature Minimum (degF)", "min_temp_degF"},
	{"Air Temperature Observed (degF) Start of Day Values", "observed_temp_degF"},
	{"Snow Density (pct) Start of Day Values", "snow_density_percentage"},
}

// NormalizeCSV parses a report and renames its headers with CanonicalColumns.
func NormalizeCSV(text string) (ObservationTable, error) {
	table, err := ParseCSV(text)
	if err != nil {
		return ObservationTable{}, err
	}
	return RenameColumns(table, CanonicalColumns)
}

// ParseCSV reads a comma-delimited report. Lines starting with '#' and blank
// lines are skipped. The first remaining line is the header; every data row
// must have exactly as many fields as the header. A leading UTF-8 byte order
// mark is ignored.
func ParseCSV(text string) (ObservationTable, error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	r := csv.NewReader(strings.NewReader(text))
	r.Comment = commentMarker
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return ObservationTable{}, fmt.Errorf("%w: report has no header line", ErrFormat)
	}
	if err != nil {
		return ObservationTable{}, fmt.Errorf("%w: read header: %w", ErrFormat, err)
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name}
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ObservationTable{}, fmt.Errorf("%w: read row: %w", ErrFormat, err)
		}
		if len(record) != len(header) {
			line, _ := r.FieldPos(0)
			return ObservationTable{}, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrFormat, line, len(record), len(header))
		}
		for i, v := range record {
			cols[i].Values = append(cols[i].Values, v)
		}
	}

	for i := range cols {
		if cols[i].Values == nil {
			cols[i].Values = []string{}
		}
	}

	return ObservationTable{Columns: cols}, nil
}

// RenameColumns returns a copy of table with headers renamed per mapping.
// Headers not in the mapping are kept; mapping entries with no matching header
// are ignored. A rename that leaves two columns with the same name fails.
func RenameColumns(table ObservationTable, mapping []ColumnRename) (ObservationTable, error) {
	lookup := make(map[string]string, len(mapping))
	for _, m := range mapping {
		if _, dup := lookup[m.Source]; dup {
			return ObservationTable{}, fmt.Errorf("%w: mapping lists source header %q twice", ErrFormat, m.Source)
		}
		lookup[m.Source] = m.Canonical
	}

	out := table.clone()
	seen := make(map[string]string, len(out.Columns))
	for i := range out.Columns {
		source := out.Columns[i].Name
		name := source
		if canonical, ok := lookup[source]; ok {
			name = canonical
		}
		if prev, dup := seen[name]; dup {
			return ObservationTable{}, fmt.Errorf("%w: headers %q and %q both map to %q", ErrFormat, prev, source, name)
		}
		seen[name] = source
		out.Columns[i].Name = name
	}
	return out, nil
}
