// Package excel writes exported weather records to an xlsx workbook.
package excel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/artifact"
	"github.com/couchcryptid/weather-history-etl/internal/domain"
)

// SheetName is the single sheet every exported workbook contains.
const SheetName = "Last30DaysWeather"

// Header is the fixed first row of the exported sheet.
var Header = []string{"日期", "天气状况(白天/夜间)", "最高气温", "最低气温", "风力风向(白天)", "风力风向(夜间)"}

// Writer persists filtered records as a workbook. It implements
// pipeline.Loader.
type Writer struct {
	artifacts *artifact.Store
	logger    *slog.Logger
}

// NewWriter creates a workbook writer saving into the artifact store's
// directory.
func NewWriter(artifacts *artifact.Store, logger *slog.Logger) *Writer {
	return &Writer{artifacts: artifacts, logger: logger}
}

// Load writes records to {city}Last30DaysWeather.xlsx. An empty input is a
// warned no-op: no file is produced or overwritten.
func (w *Writer) Load(_ context.Context, citySlug string, records []domain.DailyRecord) error {
	if len(records) == 0 {
		w.logger.Warn("no records to export, skipping workbook", "city", citySlug)
		return nil
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("close workbook failed", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		row := []any{
			rec.Date.Format("2006-01-02"),
			rec.WeatherDayNight,
			rec.HighTemp,
			rec.LowTemp,
			rec.WindDay,
			rec.WindNight,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := w.artifacts.WorkbookPath(citySlug)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	w.logger.Info("workbook written", "path", path, "records", len(records))
	return nil
}
