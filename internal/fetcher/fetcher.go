package fetcher

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"savetrack/internal/config"
	"savetrack/internal/signal"
)

// PriceFetcher retrieves daily closes for a symbol over an inclusive date range.
type PriceFetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]signal.PriceBar, error)
}

// New builds the provider named in cfg.
func New(cfg config.ProviderConfig, logger zerolog.Logger) (PriceFetcher, error) {
	switch strings.ToLower(cfg.Name) {
	case "yahoo":
		return NewYahoo(YahooOptions{
			BaseURL:    cfg.Yahoo.BaseURL,
			Timeout:    cfg.RequestTimeout,
			RetryCount: cfg.RetryCount,
			UserAgent:  cfg.UserAgent,
		}, logger), nil
	case "stooq":
		return NewStooq(StooqOptions{
			BaseURL:    cfg.Stooq.BaseURL,
			Suffix:     cfg.Stooq.Suffix,
			Timeout:    cfg.RequestTimeout,
			RetryCount: cfg.RetryCount,
			UserAgent:  cfg.UserAgent,
		}, logger), nil
	case "csv":
		return NewCSVFiles(cfg.CSV.Dir, logger), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", cfg.Name)
	}
}

func newHTTPClient(baseURL string, timeout time.Duration, retries int, userAgent string) *resty.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "savetrack/1.0"
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", userAgent)
}

func unavailable(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %w", signal.ErrDataUnavailable, symbol, err)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeBars sorts by date, keeps the last observation per day, and drops
// bars outside [start, end]. Zero bounds are open.
func normalizeBars(bars []signal.PriceBar, start, end time.Time) []signal.PriceBar {
	slices.SortStableFunc(bars, func(a, b signal.PriceBar) int {
		return a.Date.Compare(b.Date)
	})

	out := make([]signal.PriceBar, 0, len(bars))
	for _, bar := range bars {
		if !start.IsZero() && bar.Date.Before(dayOf(start)) {
			continue
		}
		if !end.IsZero() && bar.Date.After(dayOf(end)) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(bar.Date) {
			out[n-1] = bar
			continue
		}
		out = append(out, bar)
	}
	return out
}
