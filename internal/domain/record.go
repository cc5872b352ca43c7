package domain

import (
	"sort"
	"strings"
	"time"
)

// cellDateLayout matches the source site's date cells, e.g. "2024年4月26日".
// Go's reference layout handles both one- and two-digit months and days.
const cellDateLayout = "2006年1月2日"

// DailyRecord is one parsed row of a monthly history table. Immutable once
// parsed; temperature and wind fields stay verbatim strings.
type DailyRecord struct {
	Date            time.Time `json:"date"`
	WeatherDayNight string    `json:"weather_day_night"`
	HighTemp        string    `json:"high_temp"`
	LowTemp         string    `json:"low_temp"`
	WindDay         string    `json:"wind_day"`
	WindNight       string    `json:"wind_night"`
}

// FetchResult holds the raw bytes of a fetched monthly page together with the
// charset detected from them. A failed fetch is represented by an error, not
// by a zero FetchResult.
type FetchResult struct {
	Body    []byte
	Charset string
}

// MonthRange returns the "YYYYMM" token of every calendar month touched by
// the inclusive [start, end] range, in chronological order without
// duplicates. An inverted range yields nil.
func MonthRange(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}

	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []string
	for !cur.After(last) {
		months = append(months, cur.Format("200601"))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// ParseCellDate parses a date cell like "2024年4月26日" into a UTC midnight time.
func ParseCellDate(s string) (time.Time, error) {
	return time.Parse(cellDateLayout, strings.TrimSpace(s))
}

// SplitRange splits a "day / night" style cell on its first slash, trimming
// both halves. A cell without a slash becomes (whole cell, "").
func SplitRange(s string) (string, string) {
	left, right, found := strings.Cut(s, "/")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(left), strings.TrimSpace(right)
}

// FilterByDate keeps records whose date falls inside the inclusive
// [start, end] window and returns them sorted ascending by date. The sort is
// stable, so filtering an already filtered and sorted slice with the same
// bounds returns an identical sequence.
func FilterByDate(records []DailyRecord, start, end time.Time) []DailyRecord {
	filtered := make([]DailyRecord, 0, len(records))
	for _, rec := range records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	return filtered
}

// LookbackWindow returns the inclusive [start, end] bounds for a trailing
// window of days ending today. Both bounds are truncated to UTC midnight so
// that boundary-day records, which parse to midnight, satisfy the inclusive
// comparison.
func LookbackWindow(days int) (time.Time, time.Time) {
	now := clock.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -days), end
}
