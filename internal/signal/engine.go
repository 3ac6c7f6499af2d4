package signal

import (
	"fmt"
	"slices"
)

type options struct {
	window int
}

// Option tunes Compute.
type Option func(*options)

// WithWindow overrides the trailing window length.
func WithWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.window = n
		}
	}
}

// Compute sorts bars by date and derives the trailing average and signal for
// every bar. The average at index i only uses bars 0..i.
func Compute(bars []PriceBar, opts ...Option) ([]Row, error) {
	cfg := options{window: DefaultWindow}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: empty price series", ErrDataUnavailable)
	}

	sorted := slices.Clone(bars)
	slices.SortStableFunc(sorted, func(a, b PriceBar) int {
		return a.Date.Compare(b.Date)
	})

	rows := make([]Row, 0, len(sorted))
	window := NewWindow(cfg.window)
	for i, bar := range sorted {
		if bar.Close.IsNegative() {
			return nil, fmt.Errorf("%w: negative close %s on %s", ErrDataUnavailable, bar.Close, bar.Date.Format("2006-01-02"))
		}
		if i > 0 && sorted[i-1].Date.Equal(bar.Date) {
			return nil, fmt.Errorf("%w: duplicate bar for %s", ErrDataUnavailable, bar.Date.Format("2006-01-02"))
		}

		avg := window.Push(bar.Close)
		rows = append(rows, Row{
			Date:    bar.Date,
			Close:   bar.Close,
			Average: avg,
			Signal:  Classify(bar.Close, avg),
		})
	}
	return rows, nil
}
