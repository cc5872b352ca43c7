// Package tianqihoubao fetches and parses monthly weather history pages from
// tianqihoubao.com.
package tianqihoubao

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/saintfish/chardet"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/artifact"
	"github.com/couchcryptid/weather-history-etl/internal/domain"
)

// Client fetches monthly history pages. It implements pipeline.MonthFetcher.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	detector   *chardet.Detector
	artifacts  *artifact.Store
	logger     *slog.Logger
}

// NewClient creates a page fetcher. artifacts receives the raw bytes of every
// successfully fetched month as a debug artifact.
func NewClient(baseURL, userAgent string, timeout time.Duration, artifacts *artifact.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		detector:  chardet.NewHtmlDetector(),
		artifacts: artifacts,
		logger:    logger,
	}
}

// FetchMonth retrieves the history page for one city and month and detects
// its encoding. Any transport error, non-2xx status, or undetectable charset
// is returned as an error; callers treat a failed month as contributing zero
// records.
func (c *Client) FetchMonth(ctx context.Context, citySlug, yearMonth string) (domain.FetchResult, error) {
	u := fmt.Sprintf("%s/%s/month/%s.html", c.baseURL, citySlug, yearMonth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.FetchResult{}, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("read %s: %w", u, err)
	}

	best, err := c.detector.DetectBest(body)
	if err != nil || best.Charset == "" {
		return domain.FetchResult{}, fmt.Errorf("detect encoding for %s%s: no charset with any confidence", citySlug, yearMonth)
	}
	c.logger.Debug("encoding detected",
		"city", citySlug,
		"month", yearMonth,
		"charset", best.Charset,
		"confidence", best.Confidence,
	)

	// The artifact is troubleshooting-only; a failed write must not discard
	// the month's data.
	if path, err := c.artifacts.SaveHTML(citySlug, yearMonth, body); err != nil {
		c.logger.Warn("debug artifact write failed", "error", err)
	} else {
		c.logger.Debug("debug artifact written", "path", path)
	}

	return domain.FetchResult{Body: body, Charset: best.Charset}, nil
}
