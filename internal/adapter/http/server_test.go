package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/snotel-etl/internal/adapter/http"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockReports struct {
	report *domain.StationReport
}

func (m *mockReports) LastReport() (domain.StationReport, bool) {
	if m.report == nil {
		return domain.StationReport{}, false
	}
	return *m.report, true
}

func newTestServer(readyErr error, report *domain.StationReport) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockReports{report: report}, slog.Default())
}

func sampleReport() *domain.StationReport {
	depth := 43.0
	table, _ := domain.NormalizeCSV("Date,Station Id,Snow Depth (in) Start of Day Values\n2024-01-15,335,43\n")
	return &domain.StationReport{
		Station:      domain.StationRecord{Network: "SNTL", State: "CO", SiteName: "Berthoud Summit (335)"},
		StationID:    "335",
		ReportURL:    domain.BuildReportURL("335", "CO"),
		Table:        table,
		Observations: []domain.Observation{{ID: "snotel-0011223344556677", StationID: 335, SnowDepthIn: &depth}},
		ProcessedAt:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("not ready yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReportReturns404BeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportReturnsLatestAsJSON(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		StationID    string           `json:"station_id"`
		Columns      []string         `json:"columns"`
		Observations []map[string]any `json:"observations"`
		Station      map[string]any   `json:"station"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "335", body.StationID)
	assert.Equal(t, []string{"date", "station_id", "snow_depth_in"}, body.Columns)
	require.Len(t, body.Observations, 1)
	assert.InDelta(t, 43.0, body.Observations[0]["snow_depth_in"], 0)
	assert.Equal(t, "Berthoud Summit (335)", body.Station["site_name"])
}

func TestReportReturnsCSV(t *testing.T) {
	rec := serve(newTestServer(nil, sampleReport()), "/report?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, []string{"date,station_id,snow_depth_in", "2024-01-15,335,43"}, lines)
}
