package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"savetrack/internal/signal"
)

const stooqDownloadPath = "/q/d/l/"

// StooqOptions parameterise the Stooq CSV fetcher.
type StooqOptions struct {
	BaseURL    string
	Suffix     string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// Stooq downloads daily history as CSV from stooq.com.
type Stooq struct {
	opts   StooqOptions
	logger zerolog.Logger
	client *resty.Client
}

// NewStooq constructs a Stooq fetcher.
func NewStooq(opts StooqOptions, logger zerolog.Logger) *Stooq {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://stooq.com"
	}
	return &Stooq{
		opts:   opts,
		logger: logger.With().Str("component", "stooq_fetcher").Logger(),
		client: newHTTPClient(opts.BaseURL, opts.Timeout, opts.RetryCount, opts.UserAgent),
	}
}

// FetchHistory retrieves daily closes between start and end inclusive.
func (s *Stooq) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]signal.PriceBar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, unavailable(symbol, errors.New("symbol is required"))
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":  s.stooqSymbol(symbol),
			"d1": dayOf(start).Format("20060102"),
			"d2": dayOf(end).Format("20060102"),
			"i":  "d",
		}).
		Get(stooqDownloadPath)
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, unavailable(symbol, fmt.Errorf("stooq error (%d): %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.HasPrefix(body, []byte("No data")) {
		return nil, unavailable(symbol, errors.New("no data found"))
	}

	bars, err := parseBarsCSV(bytes.NewReader(body))
	if err != nil {
		return nil, unavailable(symbol, err)
	}

	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return nil, unavailable(symbol, errors.New("no data found"))
	}

	s.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched stooq history")
	return bars, nil
}

func (s *Stooq) stooqSymbol(symbol string) string {
	symbol = strings.ToLower(symbol)
	if strings.Contains(symbol, ".") || s.opts.Suffix == "" {
		return symbol
	}
	return symbol + strings.ToLower(s.opts.Suffix)
}

var _ PriceFetcher = (*Stooq)(nil)
