package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/snotel-etl/internal/domain"
)

// ReportTransformer implements Transformer with the domain normalizer and
// observation typing.
type ReportTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{logger: logger}
}

func (t *ReportTransformer) Transform(station domain.StationRecord, id domain.StationID, reportURL, csvText string) (domain.StationReport, error) {
	table, err := domain.NormalizeCSV(csvText)
	if err != nil {
		return domain.StationReport{}, err
	}

	obs, err := domain.ObservationsFromTable(table)
	if err != nil {
		return domain.StationReport{}, err
	}
	if len(obs) == 0 {
		t.logger.Warn("report has no rows", "station_id", string(id), "report_url", reportURL)
	}

	return domain.NewStationReport(station, id, reportURL, table, obs), nil
}
