package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"savetrack/internal/alerting"
	"savetrack/internal/fetcher"
	"savetrack/internal/metrics"
	"savetrack/internal/savings"
	"savetrack/internal/signal"
	"savetrack/internal/storage"
)

// ErrInvalidInput reports a request the service refuses before touching any collaborator.
var ErrInvalidInput = errors.New("invalid input")

// Options configures a Service.
type Options struct {
	Window   int
	Notifier alerting.Notifier
	// Alerts remembers sent crossovers. Without it every run may notify again.
	Alerts   storage.AlertLog
	Cooldown time.Duration
	Metrics  *metrics.Recorder
	Now      func() time.Time
	NewRunID func() string
}

// Service orchestrates fetching, signal computation, and persistence.
type Service struct {
	prices   fetcher.PriceFetcher
	signals  storage.SignalStore
	ledger   storage.TransactionStore
	notifier alerting.Notifier
	alerts   storage.AlertLog
	cooldown time.Duration
	metrics  *metrics.Recorder
	logger   zerolog.Logger

	window   int
	now      func() time.Time
	newRunID func() string
}

// New constructs the service. prices may be nil for ledger-only use.
func New(prices fetcher.PriceFetcher, signals storage.SignalStore, ledger storage.TransactionStore, opts Options, logger zerolog.Logger) *Service {
	window := opts.Window
	if window <= 0 {
		window = signal.DefaultWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = func() string { return uuid.NewString() }
	}

	return &Service{
		prices:   prices,
		signals:  signals,
		ledger:   ledger,
		notifier: opts.Notifier,
		alerts:   opts.Alerts,
		cooldown: opts.Cooldown,
		metrics:  opts.Metrics,
		logger:   logger.With().Str("component", "service").Logger(),
		window:   window,
		now:      now,
		newRunID: newRunID,
	}
}

// StrategyRequest names the ticker and inclusive date range to evaluate.
type StrategyRequest struct {
	Ticker string
	Start  time.Time
	End    time.Time
}

// StrategyResult carries the freshly computed rows and everything stored for the ticker.
type StrategyResult struct {
	RunID    string
	Ticker   string
	Computed []signal.Row
	Stored   []storage.SignalRecord
}

// RunStrategy fetches prices, computes signals, appends them, and reloads the ticker's rows.
func (s *Service) RunStrategy(ctx context.Context, req StrategyRequest) (StrategyResult, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return StrategyResult{}, fmt.Errorf("%w: ticker is required", ErrInvalidInput)
	}
	if !req.End.IsZero() && !req.Start.Before(req.End) {
		return StrategyResult{}, fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	if s.prices == nil || s.signals == nil {
		return StrategyResult{}, errors.New("strategy dependencies not configured")
	}
	end := req.End
	if end.IsZero() {
		end = s.now()
	}

	fetchStart := time.Now()
	bars, err := s.prices.FetchHistory(ctx, ticker, req.Start, end)
	s.metrics.ObserveFetch(outcomeOf(err), time.Since(fetchStart).Seconds())
	if err != nil {
		s.metrics.RecordStrategyRun(ticker, outcomeOf(err))
		return StrategyResult{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	rows, err := signal.Compute(bars, signal.WithWindow(s.window))
	if err != nil {
		s.metrics.RecordStrategyRun(ticker, outcomeOf(err))
		return StrategyResult{}, fmt.Errorf("compute %s: %w", ticker, err)
	}

	runID := s.newRunID()
	if err := s.signals.AppendSignalRows(ctx, ticker, runID, rows); err != nil {
		s.metrics.RecordStrategyRun(ticker, outcomeOf(err))
		return StrategyResult{}, err
	}

	stored, err := s.signals.ListSignalRows(ctx, ticker)
	if err != nil {
		s.metrics.RecordStrategyRun(ticker, outcomeOf(err))
		return StrategyResult{}, err
	}

	latest, _ := signal.Latest(rows)
	s.metrics.RecordStrategyRun(ticker, "ok")
	s.metrics.RecordSignalRows(ticker, len(rows), int(latest.Signal))
	s.logger.Info().
		Str("ticker", ticker).
		Str("run_id", runID).
		Int("rows", len(rows)).
		Int("stored", len(stored)).
		Str("latest_signal", latest.Signal.String()).
		Msg("strategy stored")

	s.notifyCrossover(ctx, ticker, runID, rows)

	return StrategyResult{RunID: runID, Ticker: ticker, Computed: rows, Stored: stored}, nil
}

func (s *Service) notifyCrossover(ctx context.Context, ticker, runID string, rows []signal.Row) {
	if s.notifier == nil {
		return
	}
	from, to, ok := signal.Crossover(rows)
	if !ok {
		return
	}
	last, _ := signal.Latest(rows)
	note := alerting.Notification{
		Ticker:   ticker,
		Date:     last.Date,
		Close:    last.Close,
		Average:  last.Average,
		Window:   s.window,
		Previous: from,
		Current:  to,
		RunID:    runID,
	}
	if s.suppressed(ctx, note) {
		return
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("failed to dispatch crossover alert")
		return
	}
	if s.alerts == nil {
		return
	}
	if err := s.alerts.RecordAlert(ctx, storage.AlertRecord{
		Ticker: ticker,
		Date:   note.Date,
		Signal: note.Current,
		RunID:  runID,
		SentAt: s.now().UTC(),
	}); err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("failed to record crossover alert")
	}
}

// suppressed reports whether the crossover on note.Date was already sent, or the
// ticker was alerted within the cooldown.
func (s *Service) suppressed(ctx context.Context, note alerting.Notification) bool {
	if s.alerts == nil {
		return false
	}
	last, ok, err := s.alerts.LastAlert(ctx, note.Ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", note.Ticker).Msg("alert log unavailable, sending anyway")
		return false
	}
	if !ok {
		return false
	}
	if last.Date.Format(storage.DateLayout) == note.Date.UTC().Format(storage.DateLayout) {
		s.logger.Debug().Str("ticker", note.Ticker).Time("date", note.Date).Msg("crossover already alerted")
		return true
	}
	if s.cooldown > 0 && s.now().Sub(last.SentAt) < s.cooldown {
		s.logger.Debug().Str("ticker", note.Ticker).Time("last_sent", last.SentAt).Msg("alert cooldown active")
		return true
	}
	return false
}

// Signals returns the stored rows for ticker, trimmed to the last limit rows when limit > 0.
func (s *Service) Signals(ctx context.Context, ticker string, limit int) ([]storage.SignalRecord, error) {
	if s.signals == nil {
		return nil, errors.New("signal store not configured")
	}
	rows, err := s.signals.ListSignalRows(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
	if err != nil {
		return nil, err
	}
	return Tail(rows, limit), nil
}

// TransactionInput is a user-entered savings movement.
type TransactionInput struct {
	Date     time.Time
	Kind     savings.Kind
	Category string
	Amount   decimal.Decimal
	Note     string
}

// AddTransaction validates and stores one transaction.
func (s *Service) AddTransaction(ctx context.Context, in TransactionInput) (storage.Transaction, error) {
	if s.ledger == nil {
		return storage.Transaction{}, errors.New("transaction store not configured")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return storage.Transaction{}, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if in.Amount.IsZero() {
		return storage.Transaction{}, fmt.Errorf("%w: amount must be non-zero", ErrInvalidInput)
	}
	kind := in.Kind
	if kind == "" {
		kind = savings.KindDeposit
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx, err := s.ledger.AppendTransaction(ctx, storage.Transaction{
		Date:     date,
		Category: category,
		Amount:   savings.SignedAmount(kind, in.Amount),
		Note:     strings.TrimSpace(in.Note),
	})
	if err != nil {
		return storage.Transaction{}, err
	}

	s.metrics.RecordTransaction(string(kind))
	s.logger.Info().
		Int64("id", tx.ID).
		Str("category", tx.Category).
		Str("amount", tx.Amount.String()).
		Msg("transaction added")
	return tx, nil
}

// Savings loads every transaction and derives the running balance and category totals.
func (s *Service) Savings(ctx context.Context) (savings.Summary, error) {
	if s.ledger == nil {
		return savings.Summary{}, errors.New("transaction store not configured")
	}
	txs, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return savings.Summary{}, err
	}
	return savings.Summarize(txs), nil
}

// Tail returns the last n records, or all of them when n <= 0.
func Tail[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, signal.ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, storage.ErrStorageFailure):
		return "storage"
	default:
		return "error"
	}
}
