package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"savetrack/internal/config"
	"savetrack/internal/signal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "savings.db")
	store, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func sampleRows() []signal.Row {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []signal.Row{
		{Date: base, Close: decimal.NewFromInt(10), Average: decimal.NewFromInt(10), Signal: signal.Bearish},
		{Date: base.AddDate(0, 0, 1), Close: decimal.NewFromInt(20), Average: decimal.NewFromInt(15), Signal: signal.Bullish},
		{Date: base.AddDate(0, 0, 2), Close: decimal.RequireFromString("30.5"), Average: decimal.RequireFromString("20.1666666666666667"), Signal: signal.Bullish},
	}
}

func TestAppendSignalRowsTwiceDuplicates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rows := sampleRows()

	if err := store.AppendSignalRows(ctx, "AAPL", "run-1", rows); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.AppendSignalRows(ctx, "AAPL", "run-2", rows); err != nil {
		t.Fatalf("second append: %v", err)
	}

	stored, err := store.ListSignalRows(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ListSignalRows: %v", err)
	}
	if len(stored) != 2*len(rows) {
		t.Fatalf("expected %d rows, got %d", 2*len(rows), len(stored))
	}

	for i := 1; i < len(stored); i++ {
		if stored[i].Date.Before(stored[i-1].Date) {
			t.Fatalf("rows not ordered by date at %d", i)
		}
	}
	if stored[0].RunID != "run-1" || stored[1].RunID != "run-2" {
		t.Fatalf("same-date rows should keep insertion order: %s, %s", stored[0].RunID, stored[1].RunID)
	}
	last := stored[len(stored)-1]
	if !last.Close.Equal(decimal.RequireFromString("30.5")) || last.Signal != signal.Bullish {
		t.Fatalf("unexpected last row: %+v", last)
	}
}

func TestAppendSignalRowsRollsBackOnFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.db.ExecContext(ctx, `CREATE TRIGGER reject_third_row BEFORE INSERT ON investments
        WHEN NEW.date = '2024-03-03'
        BEGIN SELECT RAISE(ABORT, 'rejected'); END;`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := store.AppendSignalRows(ctx, "AAPL", "run-1", sampleRows())
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}

	stored, err := store.ListSignalRows(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ListSignalRows: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("failed append must not leave rows behind, got %d", len(stored))
	}
}

func TestSignalDecimalsRoundTripExactly(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rows := sampleRows()

	if err := store.AppendSignalRows(ctx, "AAPL", "run-1", rows); err != nil {
		t.Fatalf("append: %v", err)
	}
	stored, err := store.ListSignalRows(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ListSignalRows: %v", err)
	}
	for i, rec := range stored {
		if !rec.Average.Equal(rows[i].Average) || !rec.Close.Equal(rows[i].Close) {
			t.Fatalf("row %d changed in storage: close %s average %s", i, rec.Close, rec.Average)
		}
	}
}

func TestListSignalRowsFiltersByTicker(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendSignalRows(ctx, "AAPL", "a", sampleRows()); err != nil {
		t.Fatalf("append AAPL: %v", err)
	}
	if err := store.AppendSignalRows(ctx, "MSFT", "m", sampleRows()[:1]); err != nil {
		t.Fatalf("append MSFT: %v", err)
	}

	msft, err := store.ListSignalRows(ctx, "MSFT")
	if err != nil {
		t.Fatalf("ListSignalRows: %v", err)
	}
	if len(msft) != 1 || msft[0].Ticker != "MSFT" {
		t.Fatalf("unexpected MSFT rows: %+v", msft)
	}

	all, err := store.ListSignalRows(ctx, "")
	if err != nil {
		t.Fatalf("ListSignalRows all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 rows overall, got %d", len(all))
	}

	injected, err := store.ListSignalRows(ctx, "x' OR '1'='1")
	if err != nil {
		t.Fatalf("ListSignalRows with quote: %v", err)
	}
	if len(injected) != 0 {
		t.Fatalf("ticker filter must be parameterized, got %d rows", len(injected))
	}
}

func TestTransactionsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	entered := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return entered }
	ctx := context.Background()

	later, err := store.AppendTransaction(ctx, Transaction{
		Date:     time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		Category: "Travel",
		Amount:   decimal.NewFromInt(-30),
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	if later.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !later.CreatedAt.Equal(entered) {
		t.Fatalf("created_at should come from the store clock: %s", later.CreatedAt)
	}

	if _, err := store.AppendTransaction(ctx, Transaction{
		Date:     time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Category: "Emergency",
		Amount:   decimal.NewFromInt(100),
		Note:     "first",
	}); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	txs, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Category != "Emergency" || txs[0].Note != "first" {
		t.Fatalf("transactions should be ordered by date: %+v", txs[0])
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("withdrawal amount changed: %s", txs[1].Amount)
	}
	if !txs[1].CreatedAt.Equal(entered) {
		t.Fatalf("created_at not persisted: %s", txs[1].CreatedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.db")
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: path}
	ctx := context.Background()

	first, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.AppendSignalRows(ctx, "AAPL", "r", sampleRows()); err != nil {
		t.Fatalf("append: %v", err)
	}
	first.Close()

	second, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	rows, err := second.ListSignalRows(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ListSignalRows: %v", err)
	}
	if len(rows) != len(sampleRows()) {
		t.Fatalf("reopening must keep data, got %d rows", len(rows))
	}
}

func TestOpenEmptyDriverUsesSQLite(t *testing.T) {
	store, err := Open(context.Background(), config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "savings.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if store.dialect != dialectSQLite {
		t.Fatalf("empty driver should select sqlite, got %v", store.dialect)
	}
}

func TestClosedStoreReportsStorageFailure(t *testing.T) {
	store := openTestStore(t)
	store.Close()

	_, err := store.ListTransactions(context.Background())
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}

	var nilStore *Store
	if err := nilStore.AppendSignalRows(context.Background(), "AAPL", "r", sampleRows()); !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("nil store should report ErrStorageFailure, got %v", err)
	}
}

func TestAlertLog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.LastAlert(ctx, "AAPL"); err != nil || ok {
		t.Fatalf("empty log: ok=%v err=%v", ok, err)
	}

	sent := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	for _, day := range []int{2, 3} {
		if err := store.RecordAlert(ctx, AlertRecord{
			Ticker: "AAPL",
			Date:   time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Signal: signal.Bullish,
			RunID:  "run-1",
			SentAt: sent,
		}); err != nil {
			t.Fatalf("RecordAlert: %v", err)
		}
	}

	last, ok, err := store.LastAlert(ctx, "AAPL")
	if err != nil || !ok {
		t.Fatalf("LastAlert: ok=%v err=%v", ok, err)
	}
	if last.Date.Day() != 3 || last.Signal != signal.Bullish || !last.SentAt.Equal(sent) {
		t.Fatalf("unexpected last alert: %+v", last)
	}
	if _, ok, _ := store.LastAlert(ctx, "MSFT"); ok {
		t.Fatal("alerts must be keyed by ticker")
	}
}

func TestRebind(t *testing.T) {
	got := rebind(dialectPostgres, "INSERT INTO t (a, b) VALUES (?, ?)")
	if got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Fatalf("unexpected rebind: %s", got)
	}
	if rebind(dialectSQLite, "?") != "?" {
		t.Fatal("sqlite queries keep ? placeholders")
	}
}
