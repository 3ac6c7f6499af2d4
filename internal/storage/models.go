package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

// SignalRecord is a persisted signal row for one ticker and computation run.
type SignalRecord struct {
	ID        int64
	RunID     string
	Ticker    string
	Date      time.Time
	Close     decimal.Decimal
	Average   decimal.Decimal
	Signal    signal.Signal
	CreatedAt time.Time
}

// Transaction is a manual savings entry. Withdrawals carry a negative amount.
type Transaction struct {
	ID        int64
	Date      time.Time
	Category  string
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
}
