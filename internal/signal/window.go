package signal

import "github.com/shopspring/decimal"

// Window keeps the last N observations and their running sum.
type Window struct {
	size   int
	values []decimal.Decimal
	head   int
	sum    decimal.Decimal
}

// NewWindow builds a trailing window of the given size. Sizes below one are treated as one.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size, values: make([]decimal.Decimal, 0, size)}
}

// Push adds an observation, evicting the oldest once the window is full, and
// returns the mean of the observations currently held.
func (w *Window) Push(v decimal.Decimal) decimal.Decimal {
	if len(w.values) < w.size {
		w.values = append(w.values, v)
	} else {
		w.sum = w.sum.Sub(w.values[w.head])
		w.values[w.head] = v
		w.head = (w.head + 1) % w.size
	}
	w.sum = w.sum.Add(v)
	return w.Mean()
}

// Mean returns the average of the held observations, zero when empty.
func (w *Window) Mean() decimal.Decimal {
	if len(w.values) == 0 {
		return decimal.Zero
	}
	return w.sum.Div(decimal.NewFromInt(int64(len(w.values))))
}
