// Package pipeline orchestrates the fetch-parse-filter-load cycle that
// exports a city's trailing weather history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-history-etl/internal/domain"
	"github.com/couchcryptid/weather-history-etl/internal/observability"
)

// MonthFetcher retrieves the raw page for one city and month.
type MonthFetcher interface {
	FetchMonth(ctx context.Context, citySlug, yearMonth string) (domain.FetchResult, error)
}

// MonthParser converts a fetched page into daily records.
type MonthParser interface {
	ParseMonth(res domain.FetchResult) ([]domain.DailyRecord, error)
}

// Loader writes the filtered, sorted records to a destination.
type Loader interface {
	Load(ctx context.Context, citySlug string, records []domain.DailyRecord) error
}

// Exporter runs the export cycle for configured cities.
type Exporter struct {
	fetcher      MonthFetcher
	parser       MonthParser
	loaders      []Loader
	logger       *slog.Logger
	metrics      *observability.Metrics
	lookbackDays int
	ready        atomic.Bool
}

// New creates an Exporter with the given stages and observability.
func New(f MonthFetcher, p MonthParser, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, lookbackDays int) *Exporter {
	return &Exporter{
		fetcher:      f,
		parser:       p,
		loaders:      loaders,
		logger:       logger,
		metrics:      metrics,
		lookbackDays: lookbackDays,
	}
}

// CheckReadiness returns nil once at least one export has completed with
// records, or an error describing why the service is not yet ready.
func (e *Exporter) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no export has completed yet")
	}
	return nil
}

// Export runs one complete cycle for a city: compute the lookback window,
// fetch and parse each touched month in chronological order, filter and sort
// the records, then hand them to every loader. A failed month contributes
// zero records and never aborts the run; an empty window result is a warned,
// non-error outcome that produces no output.
func (e *Exporter) Export(ctx context.Context, citySlug string) error {
	start, end := domain.LookbackWindow(e.lookbackDays)
	months := domain.MonthRange(start, end)

	e.logger.Info("export starting",
		"city", citySlug,
		"window_start", start.Format("2006-01-02"),
		"window_end", end.Format("2006-01-02"),
		"months", months,
	)

	began := time.Now()
	e.metrics.ExportRunning.Set(1)
	defer e.metrics.ExportRunning.Set(0)

	var all []domain.DailyRecord
	for _, ym := range months {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := e.fetcher.FetchMonth(ctx, citySlug, ym)
		if err != nil {
			e.logger.Warn("month fetch failed, skipping", "city", citySlug, "month", ym, "error", err)
			e.metrics.FetchErrors.Inc()
			continue
		}
		e.metrics.MonthsFetched.Inc()

		records, err := e.parser.ParseMonth(res)
		if err != nil {
			e.logger.Warn("month parse failed, skipping", "city", citySlug, "month", ym, "error", err)
			e.metrics.ParseErrors.Inc()
			continue
		}
		e.metrics.RowsParsed.Add(float64(len(records)))
		all = append(all, records...)
	}

	filtered := domain.FilterByDate(all, start, end)
	if len(filtered) == 0 {
		e.logger.Warn("no records in window, nothing exported", "city", citySlug, "parsed", len(all))
		e.metrics.EmptyExports.Inc()
		return nil
	}

	for _, l := range e.loaders {
		if err := l.Load(ctx, citySlug, filtered); err != nil {
			return fmt.Errorf("load records for %s: %w", citySlug, err)
		}
	}

	e.metrics.RecordsExported.Add(float64(len(filtered)))
	e.metrics.ExportDuration.Observe(time.Since(began).Seconds())
	e.ready.Store(true)

	e.logger.Info("export complete", "city", citySlug, "records", len(filtered))
	return nil
}

// Run exports every city immediately, then again on each refresh tick until
// the context is cancelled. Per-city failures are logged and never stop the
// loop.
func (e *Exporter) Run(ctx context.Context, citySlugs []string, refresh time.Duration) error {
	e.exportAll(ctx, citySlugs)

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("exporter stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			e.exportAll(ctx, citySlugs)
		}
	}
}

func (e *Exporter) exportAll(ctx context.Context, citySlugs []string) {
	for _, slug := range citySlugs {
		if ctx.Err() != nil {
			return
		}
		if err := e.Export(ctx, slug); err != nil {
			e.logger.Error("export failed", "city", slug, "error", err)
		}
	}
}
