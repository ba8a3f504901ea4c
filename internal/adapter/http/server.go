package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/adapter/render"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportSource exposes the most recent successful station report.
type ReportSource interface {
	LastReport() (domain.StationReport, bool)
}

// Server exposes health, readiness, metrics and latest-report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /report routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", s.handleReport(reports))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type reportResponse struct {
	Station      domain.StationRecord `json:"station"`
	StationID    domain.StationID     `json:"station_id"`
	ReportURL    string               `json:"report_url"`
	ProcessedAt  time.Time            `json:"processed_at"`
	Columns      []string             `json:"columns"`
	Observations []domain.Observation `json:"observations"`
}

// handleReport serves the last report as JSON, or as the canonical CSV table
// with ?format=csv.
func (s *Server) handleReport(reports ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := reports.LastReport()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no report processed yet"})
			return
		}

		if r.URL.Query().Get("format") == domain.FormatCSV {
			w.Header().Set("Content-Type", "text/csv")
			if err := render.Table(w, report.Table, domain.FormatCSV); err != nil {
				s.logger.Error("write report csv", "error", err)
			}
			return
		}

		sharedobs.WriteJSON(w, http.StatusOK, reportResponse{
			Station:      report.Station,
			StationID:    report.StationID,
			ReportURL:    report.ReportURL,
			ProcessedAt:  report.ProcessedAt,
			Columns:      report.Table.Header(),
			Observations: report.Observations,
		})
	}
}
