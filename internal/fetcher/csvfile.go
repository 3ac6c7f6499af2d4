package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"savetrack/internal/signal"
)

// CSVFiles reads history from <dir>/<SYMBOL>.csv.
type CSVFiles struct {
	dir    string
	logger zerolog.Logger
}

// NewCSVFiles constructs a local CSV fetcher rooted at dir.
func NewCSVFiles(dir string, logger zerolog.Logger) *CSVFiles {
	return &CSVFiles{dir: dir, logger: logger.With().Str("component", "csv_fetcher").Logger()}
}

// FetchHistory loads the symbol's file and keeps bars between start and end inclusive.
func (c *CSVFiles) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]signal.PriceBar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || strings.ContainsAny(symbol, `/\`) {
		return nil, unavailable(symbol, errors.New("invalid symbol"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(c.dir, strings.ToUpper(symbol)+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	defer file.Close()

	bars, err := parseBarsCSV(file)
	if err != nil {
		return nil, unavailable(symbol, err)
	}

	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return nil, unavailable(symbol, errors.New("no data found"))
	}

	c.logger.Debug().Str("path", path).Int("bars", len(bars)).Msg("loaded csv history")
	return bars, nil
}

var _ PriceFetcher = (*CSVFiles)(nil)
