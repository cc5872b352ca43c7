// Command validate performs integrity checks over an exported weather
// workbook: sheet name, header row, date format, chronological ordering, and
// optional containment in a [start, end] window.
//
// Usage:
//
//	go run ./cmd/validate -workbook output/shenzhenLast30DaysWeather.xlsx \
//	  -start 2024-03-27 -end 2024-04-26
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/excel"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	workbook := flag.String("workbook", "", "path to an exported xlsx workbook")
	startStr := flag.String("start", "", "optional window start, YYYY-MM-DD")
	endStr := flag.String("end", "", "optional window end, YYYY-MM-DD")
	flag.Parse()

	if *workbook == "" {
		flag.Usage()
		os.Exit(2)
	}

	start, end, err := parseWindow(*startStr, *endStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	phases, err := validate(*workbook, start, end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if startStr != "" {
		if start, err = time.Parse("2006-01-02", startStr); err != nil {
			return start, end, fmt.Errorf("invalid -start: %w", err)
		}
	}
	if endStr != "" {
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			return start, end, fmt.Errorf("invalid -end: %w", err)
		}
	}
	return start, end, nil
}

func validate(path string, start, end time.Time) ([]*phase, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	structure := &phase{name: "structure"}
	rows, err := f.GetRows(excel.SheetName)
	if err != nil {
		structure.errorf("sheet %q not found: %v", excel.SheetName, err)
		return []*phase{structure}, nil
	}
	if len(rows) == 0 {
		structure.errorf("sheet %q is empty", excel.SheetName)
		return []*phase{structure}, nil
	}

	header := &phase{name: "header"}
	if len(rows[0]) != len(excel.Header) {
		header.errorf("header has %d columns, want %d", len(rows[0]), len(excel.Header))
	} else {
		for i, want := range excel.Header {
			if rows[0][i] != want {
				header.errorf("header column %d is %q, want %q", i+1, rows[0][i], want)
			}
		}
	}

	data := &phase{name: "rows"}
	var prev time.Time
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) == 0 {
			data.errorf("row %d is empty", rowNum)
			continue
		}
		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			data.errorf("row %d date %q is not YYYY-MM-DD", rowNum, row[0])
			continue
		}
		if !prev.IsZero() && date.Before(prev) {
			data.errorf("row %d date %s is before previous row", rowNum, row[0])
		}
		prev = date

		if !start.IsZero() && date.Before(start) {
			data.errorf("row %d date %s is before window start", rowNum, row[0])
		}
		if !end.IsZero() && date.After(end) {
			data.errorf("row %d date %s is after window end", rowNum, row[0])
		}
	}
	if len(rows) == 1 {
		data.errorf("workbook has a header but no data rows")
	}

	return []*phase{structure, header, data}, nil
}
