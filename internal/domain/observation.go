package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the report generator's date column format.
const dateLayout = "2006-01-02"

// Observation is one typed row of a canonical report table. Measurements are
// nil when the report cell is empty.
type Observation struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	StationName string    `json:"station_name"`
	StationID   int       `json:"station_id"`
	StateCode   string    `json:"state_code"`
	NetworkCode string    `json:"network_code"`
	ElevationFt int       `json:"elevation_ft"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CountyName  string    `json:"county_name"`

	SnowWaterEquivalentIn               *float64 `json:"snow_water_equivalent_in"`
	SnowWaterEquivalentMedianPercentage *float64 `json:"snow_water_equivalent_median_percentage"`
	SnowDepthIn                         *float64 `json:"snow_depth_in"`
	MaxTempDegF                         *float64 `json:"max_temp_degF"`
	MinTempDegF                         *float64 `json:"min_temp_degF"`
	ObservedTempDegF                    *float64 `json:"observed_temp_degF"`
	SnowDensityPercentage               *float64 `json:"snow_density_percentage"`

	// NewSnowIn is the positive day-over-day change in snow depth.
	NewSnowIn *float64 `json:"new_snow"`

	ProcessedAt time.Time `json:"processed_at"`
}

// StationReport is the result of one pipeline run for a single station.
type StationReport struct {
	Station      StationRecord
	StationID    StationID
	ReportURL    string
	Table        ObservationTable
	Observations []Observation
	ProcessedAt  time.Time
}

// ObservationsFromTable types every row of a canonical table. The date and
// station_id columns are required; the rest are optional.
func ObservationsFromTable(table ObservationTable) ([]Observation, error) {
	for _, required := range []string{"date", "station_id"} {
		if _, ok := table.Column(required); !ok {
			return nil, fmt.Errorf("%w: report is missing the %q column", ErrFormat, required)
		}
	}

	out := make([]Observation, table.RowCount())
	for i := range out {
		obs, err := observationFromRow(table, i)
		if err != nil {
			return nil, err
		}
		out[i] = obs
	}

	deriveNewSnow(out)
	return out, nil
}

func observationFromRow(t ObservationTable, row int) (Observation, error) {
	p := rowParser{table: t, row: row}

	obs := Observation{
		Date:        p.date("date"),
		StationName: t.Value("station_name", row),
		StationID:   p.requiredInteger("station_id"),
		StateCode:   t.Value("state_code", row),
		NetworkCode: t.Value("network_code", row),
		ElevationFt: p.integer("elevation_ft"),
		Latitude:    p.number("latitude"),
		Longitude:   p.number("longitude"),
		CountyName:  t.Value("county_name", row),

		SnowWaterEquivalentIn:               p.optional("snow_water_equivalent_in"),
		SnowWaterEquivalentMedianPercentage: p.optional("snow_water_equivalent_median_percentage"),
		SnowDepthIn:                         p.optional("snow_depth_in"),
		MaxTempDegF:                         p.optional("max_temp_degF"),
		MinTempDegF:                         p.optional("min_temp_degF"),
		ObservedTempDegF:                    p.optional("observed_temp_degF"),
		SnowDensityPercentage:               p.optional("snow_density_percentage"),
	}
	if p.err != nil {
		return Observation{}, p.err
	}

	obs.ID = generateID(obs.StationID, obs.Date)
	return obs, nil
}

// rowParser converts cells of one row and keeps the first error.
type rowParser struct {
	table ObservationTable
	row   int
	err   error
}

func (p *rowParser) cell(column string) string {
	return strings.TrimSpace(p.table.Value(column, p.row))
}

func (p *rowParser) fail(column, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: row %d column %q value %q: %w", ErrFormat, p.row, column, value, err)
	}
}

func (p *rowParser) date(column string) time.Time {
	v := p.cell(column)
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		p.fail(column, v, err)
	}
	return d
}

func (p *rowParser) integer(column string) int {
	v := p.cell(column)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(column, v, err)
	}
	return n
}

// requiredInteger is integer for columns that key the row; an empty cell fails.
func (p *rowParser) requiredInteger(column string) int {
	if p.cell(column) == "" {
		p.fail(column, "", errors.New("value is required"))
		return 0
	}
	return p.integer(column)
}

func (p *rowParser) number(column string) float64 {
	f := p.optional(column)
	if f == nil {
		return 0
	}
	return *f
}

func (p *rowParser) optional(column string) *float64 {
	v := p.cell(column)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(column, v, err)
		return nil
	}
	return &f
}

// deriveNewSnow sets NewSnowIn to max(0, depth[i] - depth[i-1]). The first
// row, and any row where either depth is missing, has no value.
func deriveNewSnow(obs []Observation) {
	for i := 1; i < len(obs); i++ {
		cur, prev := obs[i].SnowDepthIn, obs[i-1].SnowDepthIn
		if cur == nil || prev == nil {
			continue
		}
		v := math.Max(0, *cur-*prev)
		obs[i].NewSnowIn = &v
	}
}

// generateID produces a deterministic ID from the station and date, so
// republishing the same report row yields the same message key.
func generateID(stationID int, date time.Time) string {
	input := fmt.Sprintf("%d|%s", stationID, date.Format(dateLayout))
	hash := sha256.Sum256([]byte(input))
	return "snotel-" + hex.EncodeToString(hash[:8])
}

// NewStationReport assembles a report and stamps it, and each observation,
// with the current clock time in UTC.
func NewStationReport(station StationRecord, id StationID, reportURL string, table ObservationTable, obs []Observation) StationReport {
	now := clock.Now().UTC()
	for i := range obs {
		obs[i].ProcessedAt = now
	}
	return StationReport{
		Station:      station,
		StationID:    id,
		ReportURL:    reportURL,
		Table:        table,
		Observations: obs,
		ProcessedAt:  now,
	}
}
