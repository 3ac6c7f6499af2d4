// Package signal computes the trailing moving average position signal for a
// daily price history.
package signal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the number of observations in the trailing average.
const DefaultWindow = 200

// ErrDataUnavailable reports a missing, empty, or malformed price history.
var ErrDataUnavailable = errors.New("price data unavailable")

// Signal is the position implied by comparing a close with its trailing average.
type Signal int

const (
	Bearish Signal = -1
	Bullish Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// PriceBar is one daily observation.
type PriceBar struct {
	Date  time.Time
	Close decimal.Decimal
}

// Row is the derived output for one PriceBar.
type Row struct {
	Date    time.Time
	Close   decimal.Decimal
	Average decimal.Decimal
	Signal  Signal
}

// Classify returns Bullish only when close is strictly above the average.
func Classify(close, average decimal.Decimal) Signal {
	if close.GreaterThan(average) {
		return Bullish
	}
	return Bearish
}

// Latest returns the last row, if any.
func Latest(rows []Row) (Row, bool) {
	if len(rows) == 0 {
		return Row{}, false
	}
	return rows[len(rows)-1], true
}

// Crossover reports whether the final row flipped sign relative to the row before it.
func Crossover(rows []Row) (from, to Signal, ok bool) {
	if len(rows) < 2 {
		return 0, 0, false
	}
	prev, last := rows[len(rows)-2].Signal, rows[len(rows)-1].Signal
	if prev == last {
		return 0, 0, false
	}
	return prev, last, true
}
