package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Stage names used in wrapped errors and the stage_errors metric.
const (
	StageFetchDirectory = "fetch_directory"
	StageExtract        = "extract"
	StageSelect         = "select"
	StageFetchReport    = "fetch_report"
	StageNormalize      = "normalize"
	StageLoad           = "load"
)

const (
	initialBackoff   = 200 * time.Millisecond
	maxBackoff       = 5 * time.Second
	maxLoadAttempts  = 5
	defaultInterval  = 24 * time.Hour
	defaultStationIx = 4
)

// Transformer turns a fetched report CSV into a typed station report.
type Transformer interface {
	Transform(station domain.StationRecord, id domain.StationID, reportURL, csvText string) (domain.StationReport, error)
}

// Loader writes a finished station report to a destination.
type Loader interface {
	Load(ctx context.Context, report domain.StationReport) error
}

// Loaders fans a report out to several sinks. Every sink is attempted; the
// returned error joins all failures.
type Loaders []Loader

func (ls Loaders) Load(ctx context.Context, report domain.StationReport) error {
	var errs []error
	for _, l := range ls {
		if err := l.Load(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options controls which station is processed and how often.
type Options struct {
	StationIndex int
	DirectoryURL string
	Interval     time.Duration
}

// DefaultOptions returns the fifth directory row, the live directory URL and
// a daily schedule.
func DefaultOptions() Options {
	return Options{
		StationIndex: defaultStationIx,
		DirectoryURL: domain.DirectoryURL,
		Interval:     defaultInterval,
	}
}

// StageError records which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline orchestrates directory lookup, report download, normalization and
// loading for a single station.
type Pipeline struct {
	fetcher     domain.Fetcher
	transformer Transformer
	loader      Loader
	opts        Options
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool

	mu   sync.RWMutex
	last *domain.StationReport
}

// New creates a Pipeline. A nil loader disables loading; zero-valued options
// fall back to DefaultOptions, except StationIndex where zero is a valid row.
func New(f domain.Fetcher, t Transformer, l Loader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.DirectoryURL == "" {
		opts.DirectoryURL = domain.DirectoryURL
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	return &Pipeline{
		fetcher:     f,
		transformer: t,
		loader:      l,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastReport returns the most recent successful report.
func (p *Pipeline) LastReport() (domain.StationReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return domain.StationReport{}, false
	}
	return *p.last, true
}

// RunOnce performs one complete fetch-normalize-load cycle. The first failing
// stage aborts the run and is returned as a *StageError.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.StationReport, error) {
	start := time.Now()

	report, err := p.build(ctx)
	if err == nil && p.loader != nil {
		if lerr := p.loader.Load(ctx, report); lerr != nil {
			err = &StageError{Stage: StageLoad, Err: lerr}
		}
	}
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.fail(err)
		return domain.StationReport{}, err
	}
	p.succeed(report)
	return report, nil
}

// build runs every stage up to, but not including, loading.
func (p *Pipeline) build(ctx context.Context) (domain.StationReport, error) {
	html, err := p.fetcher.Fetch(ctx, p.opts.DirectoryURL)
	if err != nil {
		return domain.StationReport{}, &StageError{Stage: StageFetchDirectory, Err: err}
	}

	records, err := domain.ExtractStations(html)
	if err != nil {
		return domain.StationReport{}, &StageError{Stage: StageExtract, Err: err}
	}

	station, err := domain.SelectStation(records, p.opts.StationIndex)
	if err != nil {
		return domain.StationReport{}, &StageError{Stage: StageSelect, Err: err}
	}
	id := domain.DeriveStationID(station)
	if id == "" {
		return domain.StationReport{}, &StageError{
			Stage: StageSelect,
			Err:   fmt.Errorf("%w: site name %q has no digits", domain.ErrParse, station.SiteName),
		}
	}

	reportURL := domain.BuildReportURL(id, station.State)
	p.logger.Debug("station selected",
		"index", p.opts.StationIndex,
		"site_name", station.SiteName,
		"station_id", string(id),
		"report_url", reportURL,
	)

	csvText, err := p.fetcher.Fetch(ctx, reportURL)
	if err != nil {
		return domain.StationReport{}, &StageError{Stage: StageFetchReport, Err: err}
	}

	report, err := p.transformer.Transform(station, id, reportURL, csvText)
	if err != nil {
		return domain.StationReport{}, &StageError{Stage: StageNormalize, Err: err}
	}
	p.metrics.RowsNormalized.Add(float64(report.Table.RowCount()))
	return report, nil
}

func (p *Pipeline) fail(err error) {
	var se *StageError
	if errors.As(err, &se) {
		p.metrics.StageErrors.WithLabelValues(se.Stage).Inc()
	}
	p.metrics.RunsTotal.WithLabelValues("error").Inc()
}

func (p *Pipeline) succeed(report domain.StationReport) {
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.ObservationsProduced.Add(float64(len(report.Observations)))
	p.metrics.LastSuccess.Set(float64(report.ProcessedAt.Unix()))

	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("station report processed",
		"station_id", string(report.StationID),
		"site_name", report.Station.SiteName,
		"rows", report.Table.RowCount(),
	)
}

// Run processes the station immediately and then on every interval tick
// until the context is cancelled. Failed runs are logged and wait for the
// next tick, except load failures which are retried with backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"station_index", p.opts.StationIndex,
		"interval", p.opts.Interval,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := domain.Clock().NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		p.runWithRetry(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// runWithRetry performs one scheduled run, re-attempting only the load stage.
func (p *Pipeline) runWithRetry(ctx context.Context) {
	report, err := p.build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("pipeline run failed", "error", err)
		p.fail(err)
		return
	}
	if p.loader == nil {
		p.succeed(report)
		return
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := p.loader.Load(ctx, report)
		if err == nil {
			p.succeed(report)
			return
		}
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("load failed", "error", err, "attempt", attempt)
		if attempt == maxLoadAttempts || !sleepWithContext(ctx, backoff) {
			p.fail(&StageError{Stage: StageLoad, Err: err})
			return
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// sleepWithContext waits d on the domain clock. It returns false if the
// context is cancelled first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := domain.Clock().NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
