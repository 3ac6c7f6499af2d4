package fetcher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

var (
	dateColumns  = []string{"date", "datetime", "timestamp", "time"}
	closeColumns = []string{"close", "close_price", "closing price", "adj close", "adj_close", "adjclose", "price"}
	dateLayouts  = []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02 15:04", time.RFC3339, "01/02/2006", "20060102"}
)

// errNoCloseColumn is returned when a CSV header has no recognisable close column.
var errNoCloseColumn = errors.New("no close column")

// parseBarsCSV reads a header row followed by date/close records. Column names
// are matched case-insensitively against common provider spellings.
func parseBarsCSV(r io.Reader) ([]signal.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	dateIdx := findColumn(header, dateColumns)
	if dateIdx < 0 {
		return nil, fmt.Errorf("no date column in %v", header)
	}
	closeIdx := findColumn(header, closeColumns)
	if closeIdx < 0 {
		return nil, fmt.Errorf("%w in %v", errNoCloseColumn, header)
	}

	bars := make([]signal.PriceBar, 0, 256)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if dateIdx >= len(record) || closeIdx >= len(record) {
			continue
		}

		raw := strings.TrimSpace(record[closeIdx])
		if raw == "" || strings.EqualFold(raw, "null") || strings.EqualFold(raw, "nan") {
			continue
		}
		closeVal, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse close %q: %w", line, raw, err)
		}
		date, err := parseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, signal.PriceBar{Date: date, Close: closeVal})
	}
	return bars, nil
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, col := range header {
			col = strings.TrimPrefix(col, "\ufeff")
			if strings.EqualFold(strings.TrimSpace(col), name) {
				return i
			}
		}
	}
	return -1
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dayOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
