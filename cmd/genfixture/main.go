// Command genfixture writes synthetic tianqihoubao-style monthly history
// pages, GB18030-encoded like the real site, so the pipeline can be exercised
// offline by pointing WEATHER_BASE_URL at a file server over the output
// directory.
//
// Usage:
//
//	go run ./cmd/genfixture -out testdata/pages -city shenzhen -month 202404
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/artifact"
)

var (
	weathers = []string{"晴 /晴", "多云 /晴", "多云 /多云", "阴 /小雨", "小雨 /中雨", "晴 /多云"}
	winds    = []string{"无持续风向 1-2级 /无持续风向 1-2级", "东南风 3-4级 /微风", "北风 2-3级 /北风 1-2级"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture pages")
	city := flag.String("city", "shenzhen", "city slug used in the fixture filename")
	month := flag.String("month", "", "month to generate, YYYYMM")
	flag.Parse()

	if *out == "" || *month == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -month")
	}

	first, err := time.Parse("200601", *month)
	if err != nil {
		return fmt.Errorf("invalid -month %q: %w", *month, err)
	}

	page, err := renderPage(*city, first)
	if err != nil {
		return err
	}

	store := artifact.NewStore(*out)
	if err := store.EnsureDir(); err != nil {
		return err
	}
	path, err := store.SaveHTML(*city, *month, page)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d bytes)\n", path, len(page))
	return nil
}

// renderPage builds a full month of rows in the site's table layout and
// encodes the document as GB18030.
func renderPage(city string, first time.Time) ([]byte, error) {
	lastDay := first.AddDate(0, 1, -1).Day()

	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s%d年%d月份天气查询</title></head><body>\n", city, first.Year(), int(first.Month()))
	b.WriteString("<div class=\"wdetail\">\n<table class=\"b\">\n")
	b.WriteString("<tr><td>日期</td><td>天气状况(白天/夜间)</td><td>气温</td><td>风力风向(白天/夜间)</td></tr>\n")

	for d := 1; d <= lastDay; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
		high := 20 + d%10
		low := high - 7
		fmt.Fprintf(&b, "<tr>\n<td>%d年%d月%d日</td>\n<td>%s</td>\n<td>%d℃ / %d℃</td>\n<td>%s</td>\n</tr>\n",
			date.Year(), int(date.Month()), date.Day(),
			weathers[d%len(weathers)],
			high, low,
			winds[d%len(winds)],
		)
	}

	b.WriteString("</table>\n</div>\n</body></html>\n")

	encoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewEncoder(), []byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("encode fixture as GB18030: %w", err)
	}
	return encoded, nil
}
