package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-history-etl/internal/domain"
	"github.com/couchcryptid/weather-history-etl/internal/observability"
	"github.com/couchcryptid/weather-history-etl/internal/pipeline"
)

// --- mocks ---

type mockFetcher struct {
	pages   map[string]domain.FetchResult // yearMonth -> page
	failing map[string]error              // yearMonth -> fetch error
	fetched []string
}

func (m *mockFetcher) FetchMonth(_ context.Context, _, yearMonth string) (domain.FetchResult, error) {
	m.fetched = append(m.fetched, yearMonth)
	if err, ok := m.failing[yearMonth]; ok {
		return domain.FetchResult{}, err
	}
	res, ok := m.pages[yearMonth]
	if !ok {
		return domain.FetchResult{}, fmt.Errorf("no page for %s", yearMonth)
	}
	return res, nil
}

// mockParser maps page bodies to canned records keyed by the body string.
type mockParser struct {
	records map[string][]domain.DailyRecord
	err     error
}

func (m *mockParser) ParseMonth(res domain.FetchResult) ([]domain.DailyRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[string(res.Body)], nil
}

type mockLoader struct {
	citySlug string
	loaded   []domain.DailyRecord
	calls    int
	err      error
}

func (m *mockLoader) Load(_ context.Context, citySlug string, records []domain.DailyRecord) error {
	if m.err != nil {
		return m.err
	}
	m.calls++
	m.citySlug = citySlug
	m.loaded = append([]domain.DailyRecord(nil), records...)
	return nil
}

// --- helpers ---

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(d time.Time) domain.DailyRecord {
	return domain.DailyRecord{Date: d, WeatherDayNight: "晴/晴"}
}

func testLogger() *slog.Logger {
	return slog.Default()
}

// freezeClock pins "now" to 2024-04-26 so the 30-day window is
// [2024-03-27, 2024-04-26] and the touched months are 202403 and 202404.
func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

// --- tests ---

func TestExporter_Export_HappyPath(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{pages: map[string]domain.FetchResult{
		"202403": {Body: []byte("march"), Charset: "GB-18030"},
		"202404": {Body: []byte("april"), Charset: "GB-18030"},
	}}
	parser := &mockParser{records: map[string][]domain.DailyRecord{
		// Out of window (too old), in window, and unsorted across months.
		"march": {rec(day(2024, time.March, 1)), rec(day(2024, time.March, 30))},
		"april": {rec(day(2024, time.April, 26)), rec(day(2024, time.April, 2))},
	}}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, parser, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	require.NoError(t, e.Export(context.Background(), "shenzhen"))

	assert.Equal(t, []string{"202403", "202404"}, fetcher.fetched, "months fetched chronologically")
	assert.Equal(t, "shenzhen", loader.citySlug)

	expected := []domain.DailyRecord{
		rec(day(2024, time.March, 30)),
		rec(day(2024, time.April, 2)),
		rec(day(2024, time.April, 26)),
	}
	assert.Empty(t, cmp.Diff(expected, loader.loaded), "records filtered to window and sorted ascending")

	assert.NoError(t, e.CheckReadiness(context.Background()))
}

func TestExporter_Export_FailedMonthContributesZeroRecords(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{
		pages:   map[string]domain.FetchResult{"202404": {Body: []byte("april")}},
		failing: map[string]error{"202403": errors.New("status 404")},
	}
	parser := &mockParser{records: map[string][]domain.DailyRecord{
		"april": {rec(day(2024, time.April, 2))},
	}}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, parser, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	require.NoError(t, e.Export(context.Background(), "shenzhen"), "one failed month never aborts the run")
	assert.Equal(t, []string{"202403", "202404"}, fetcher.fetched)
	require.Len(t, loader.loaded, 1)
	assert.Equal(t, day(2024, time.April, 2), loader.loaded[0].Date)
}

func TestExporter_Export_EmptyWindow(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{failing: map[string]error{
		"202403": errors.New("unreachable"),
		"202404": errors.New("unreachable"),
	}}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, &mockParser{}, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	require.NoError(t, e.Export(context.Background(), "shenzhen"), "empty result is terminal but not an error")
	assert.Zero(t, loader.calls, "loaders must not run on an empty result")
	assert.Error(t, e.CheckReadiness(context.Background()))
}

func TestExporter_Export_ParseFailureSkipsMonth(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{pages: map[string]domain.FetchResult{
		"202403": {Body: []byte("march")},
		"202404": {Body: []byte("april")},
	}}
	parser := &mockParser{err: errors.New("unsupported charset")}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, parser, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	require.NoError(t, e.Export(context.Background(), "shenzhen"))
	assert.Zero(t, loader.calls)
}

func TestExporter_Export_LoaderError(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{pages: map[string]domain.FetchResult{
		"202403": {Body: []byte("march")},
		"202404": {Body: []byte("april")},
	}}
	parser := &mockParser{records: map[string][]domain.DailyRecord{
		"april": {rec(day(2024, time.April, 2))},
	}}
	loader := &mockLoader{err: errors.New("disk full")}

	e := pipeline.New(fetcher, parser, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	err := e.Export(context.Background(), "shenzhen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Error(t, e.CheckReadiness(context.Background()), "failed load must not mark ready")
}

func TestExporter_Export_ContextCancelled(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, &mockParser{}, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Export(ctx, "shenzhen")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetcher.fetched)
}

func TestExporter_Run_StopsOnCancel(t *testing.T) {
	freezeClock(t)

	fetcher := &mockFetcher{pages: map[string]domain.FetchResult{
		"202403": {Body: []byte("march")},
		"202404": {Body: []byte("april")},
	}}
	parser := &mockParser{records: map[string][]domain.DailyRecord{
		"april": {rec(day(2024, time.April, 2))},
	}}
	loader := &mockLoader{}

	e := pipeline.New(fetcher, parser, []pipeline.Loader{loader}, testLogger(), observability.NewUnregisteredMetrics(), 30)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, []string{"shenzhen"}, time.Hour) }()

	// The initial export happens before the first tick.
	require.Eventually(t, func() bool {
		return e.CheckReadiness(context.Background()) == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
