// Package weatherhistory exports a city's trailing 30-day daily weather
// history from tianqihoubao.com to an xlsx workbook, and romanizes Chinese
// place names to pinyin.
//
// The package-level functions are convenience wrappers around the internal
// pipeline with default wiring; the long-running service in cmd/etl composes
// the same pieces with configuration, metrics, and an optional Kafka sink.
package weatherhistory

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/artifact"
	"github.com/couchcryptid/weather-history-etl/internal/adapter/excel"
	"github.com/couchcryptid/weather-history-etl/internal/adapter/tianqihoubao"
	"github.com/couchcryptid/weather-history-etl/internal/config"
	"github.com/couchcryptid/weather-history-etl/internal/observability"
	"github.com/couchcryptid/weather-history-etl/internal/pipeline"
	"github.com/couchcryptid/weather-history-etl/internal/translit"
)

const (
	defaultOutputDir    = "output"
	defaultLookbackDays = 30
	defaultFetchTimeout = 60 * time.Second
)

// GetWeatherData fetches the last 30 days of daily weather for a city,
// writes raw monthly pages under output/ as debug artifacts, and saves
// output/{city}Last30DaysWeather.xlsx. The city may be a Chinese name
// (深圳市) or a romanized slug (shenzhen). A window with no data logs a
// warning and produces no file; that is not an error.
func GetWeatherData(ctx context.Context, city string) error {
	logger := slog.Default()

	store := artifact.NewStore(defaultOutputDir)
	if err := store.EnsureDir(); err != nil {
		return err
	}

	client := tianqihoubao.NewClient(config.DefaultBaseURL, config.DefaultUserAgent, defaultFetchTimeout, store, logger)
	parser := tianqihoubao.NewParser(logger)
	writer := excel.NewWriter(store, logger)

	exporter := pipeline.New(
		client,
		parser,
		[]pipeline.Loader{writer},
		logger,
		observability.NewUnregisteredMetrics(),
		defaultLookbackDays,
	)

	return exporter.Export(ctx, translit.CitySlug(city))
}

// String2Pinyin strips every 市 from a place name and transliterates the
// remaining characters to concatenated pinyin syllables: 深圳市 → "shenzhen".
func String2Pinyin(inputStr string) string {
	return translit.Romanize(translit.StripCitySuffix(inputStr))
}
