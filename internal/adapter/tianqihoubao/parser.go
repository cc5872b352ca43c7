package tianqihoubao

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/weather-history-etl/internal/domain"
)

// Selectors for the history table on monthly pages.
const (
	containerSelector = "div.wdetail"
	tableSelector     = "table.b"
)

// Parser converts fetched monthly pages into daily records. It implements
// pipeline.MonthParser.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a monthly page parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseMonth decodes a fetched page using its detected charset and extracts
// one DailyRecord per valid table row, in document order. A missing container
// or table is logged and yields an empty result, not an error; individual bad
// rows are skipped.
func (p *Parser) ParseMonth(res domain.FetchResult) ([]domain.DailyRecord, error) {
	reader, err := decodeBody(res)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	container := doc.Find(containerSelector).First()
	if container.Length() == 0 {
		p.logger.Warn("weather detail container not found", "selector", containerSelector)
		return nil, nil
	}

	table := container.Find(tableSelector).First()
	if table.Length() == 0 {
		p.logger.Warn("weather table not found", "selector", tableSelector)
		return nil, nil
	}

	var records []domain.DailyRecord
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}

		cells := cellTexts(row)
		if len(cells) != 4 {
			p.logger.Debug("skipping row with unexpected cell count", "row", i, "cells", len(cells))
			return
		}

		date, err := domain.ParseCellDate(cells[0])
		if err != nil {
			p.logger.Warn("skipping row with unparseable date", "row", i, "date", cells[0], "error", err)
			return
		}

		highTemp, lowTemp := domain.SplitRange(cells[2])
		windDay, windNight := domain.SplitRange(cells[3])

		records = append(records, domain.DailyRecord{
			Date:            date,
			WeatherDayNight: cells[1],
			HighTemp:        highTemp,
			LowTemp:         lowTemp,
			WindDay:         windDay,
			WindNight:       windNight,
		})
	})

	return records, nil
}

// cellTexts extracts the text of each td/th cell in a row, collapsing
// internal whitespace and newlines to single spaces.
func cellTexts(row *goquery.Selection) []string {
	var texts []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(cell.Text()), " "))
	})
	return texts
}

// decodeBody wraps the raw page bytes in a decoder for the detected charset.
func decodeBody(res domain.FetchResult) (io.Reader, error) {
	enc, err := lookupEncoding(res.Charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(bytes.NewReader(res.Body), enc.NewDecoder()), nil
}

// lookupEncoding resolves a chardet charset name to an encoding. Detector
// names are not always WHATWG labels (e.g. "GB-18030" vs "gb18030"), so a
// dash-stripped lookup is tried as a fallback.
func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err == nil {
		return enc, nil
	}

	stripped := strings.ReplaceAll(strings.ToLower(name), "-", "")
	if enc, err2 := htmlindex.Get(stripped); err2 == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("unsupported charset %q: %w", name, err)
}
