package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

const yahooChartPath = "/v8/finance/chart/{symbol}"

// YahooOptions parameterise the Yahoo chart fetcher.
type YahooOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// Yahoo fetches daily history from the Yahoo Finance chart API.
type Yahoo struct {
	opts   YahooOptions
	logger zerolog.Logger
	client *resty.Client
}

// NewYahoo constructs a Yahoo chart fetcher.
func NewYahoo(opts YahooOptions, logger zerolog.Logger) *Yahoo {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	return &Yahoo{
		opts:   opts,
		logger: logger.With().Str("component", "yahoo_fetcher").Logger(),
		client: newHTTPClient(opts.BaseURL, opts.Timeout, opts.RetryCount, opts.UserAgent),
	}
}

// FetchHistory retrieves daily closes between start and end inclusive.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]signal.PriceBar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, unavailable(symbol, errors.New("symbol is required"))
	}

	resp, err := y.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(dayOf(start).Unix(), 10),
			"period2":  strconv.FormatInt(dayOf(end).AddDate(0, 0, 1).Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		Get(yahooChartPath)
	if err != nil {
		return nil, unavailable(symbol, err)
	}

	var payload chartResponse
	decodeErr := json.Unmarshal(resp.Body(), &payload)

	if resp.StatusCode() != http.StatusOK {
		return nil, unavailable(symbol, parseChartError(resp.StatusCode(), payload, resp.Body(), decodeErr))
	}
	if decodeErr != nil {
		return nil, unavailable(symbol, fmt.Errorf("decode chart response: %w", decodeErr))
	}
	if payload.Chart.Error != nil {
		return nil, unavailable(symbol, parseChartError(resp.StatusCode(), payload, resp.Body(), nil))
	}
	if len(payload.Chart.Result) == 0 {
		return nil, unavailable(symbol, errors.New("no data found"))
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || result.Indicators.Quote[0].Close == nil {
		return nil, unavailable(symbol, errNoCloseColumn)
	}
	closes := result.Indicators.Quote[0].Close

	offset := time.Duration(result.Meta.GMTOffset) * time.Second
	bars := make([]signal.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		date := dayOf(time.Unix(ts, 0).UTC().Add(offset))
		bars = append(bars, signal.PriceBar{Date: date, Close: decimal.NewFromFloat(*closes[i])})
	}

	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return nil, unavailable(symbol, errors.New("no data found"))
	}

	y.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched chart history")
	return bars, nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func parseChartError(status int, payload chartResponse, body []byte, decodeErr error) error {
	if decodeErr == nil && payload.Chart.Error != nil {
		if payload.Chart.Error.Description != "" {
			return fmt.Errorf("yahoo chart error (%d): %s", status, payload.Chart.Error.Description)
		}
		if payload.Chart.Error.Code != "" {
			return fmt.Errorf("yahoo chart error (%d): %s", status, payload.Chart.Error.Code)
		}
	}
	if len(body) > 0 {
		return fmt.Errorf("yahoo chart error (%d): %s", status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("yahoo chart error (%d)", status)
}

var _ PriceFetcher = (*Yahoo)(nil)
