package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

var (
	// ErrStorageFailure wraps every error returned by the database layer.
	ErrStorageFailure = errors.New("storage failure")
	// ErrNotConfigured indicates the store was not opened.
	ErrNotConfigured = fmt.Errorf("%w: store not configured", ErrStorageFailure)
)

const (
	// DateLayout is the stored form of signal dates.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the stored form of transaction dates.
	DateTimeLayout = "2006-01-02 15:04:05"
)

const (
	insertSignalRowSQL = `INSERT INTO investments (
        run_id,
        ticker,
        date,
        close_price,
        ma_200,
        signal,
        created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?);`

	selectSignalRowsSQL = `SELECT
        id,
        run_id,
        ticker,
        date,
        close_price,
        ma_200,
        signal,
        created_at
    FROM investments`

	insertTransactionSQL = `INSERT INTO savings (
        date,
        category,
        amount,
        note,
        created_at
    ) VALUES (?, ?, ?, ?, ?)
    RETURNING id;`

	listTransactionsSQL = `SELECT
        id,
        date,
        category,
        amount,
        note,
        created_at
    FROM savings
    ORDER BY date ASC, id ASC;`
)

// SignalStore persists computed signal rows.
type SignalStore interface {
	AppendSignalRows(ctx context.Context, ticker, runID string, rows []signal.Row) error
	ListSignalRows(ctx context.Context, ticker string) ([]SignalRecord, error)
}

// TransactionStore persists manual savings transactions.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// Store aggregates access to signal rows and transactions.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Close releases the underlying database handle.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	_ = s.db.Close()
}

func (s *Store) getDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	return s.db, nil
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// AppendSignalRows inserts every row for ticker in a single transaction.
// Earlier runs for the same ticker and dates are left in place.
func (s *Store) AppendSignalRows(ctx context.Context, ticker, runID string, rows []signal.Row) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin append signal rows: %w", ErrStorageFailure, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, rebind(s.dialect, insertSignalRowSQL))
	if err != nil {
		return fmt.Errorf("%w: prepare append signal rows: %w", ErrStorageFailure, err)
	}
	defer stmt.Close()

	createdAt := s.clock().Format(time.RFC3339Nano)
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID,
			ticker,
			row.Date.UTC().Format(DateLayout),
			row.Close,
			row.Average,
			int64(row.Signal),
			createdAt,
		); err != nil {
			return fmt.Errorf("%w: append signal row %s: %w", ErrStorageFailure, row.Date.Format(DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit signal rows: %w", ErrStorageFailure, err)
	}
	return nil
}

// ListSignalRows returns stored rows ordered by date, limited to ticker when it is non-empty.
func (s *Store) ListSignalRows(ctx context.Context, ticker string) ([]SignalRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	query := selectSignalRowsSQL
	var args []any
	if ticker != "" {
		query += "\n    WHERE ticker = ?"
		args = append(args, ticker)
	}
	query += "\n    ORDER BY date ASC, id ASC;"

	rows, err := db.QueryContext(ctx, rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list signal rows: %w", ErrStorageFailure, err)
	}
	defer rows.Close()

	records := make([]SignalRecord, 0)
	for rows.Next() {
		rec, scanErr := scanSignalRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list signal rows: %w", ErrStorageFailure, err)
	}
	return records, nil
}

// AppendTransaction stores one transaction and stamps it with the entry time.
func (s *Store) AppendTransaction(ctx context.Context, tx Transaction) (Transaction, error) {
	db, err := s.getDB()
	if err != nil {
		return Transaction{}, err
	}

	tx.CreatedAt = s.clock()
	row := db.QueryRowContext(ctx, rebind(s.dialect, insertTransactionSQL),
		tx.Date.UTC().Format(DateTimeLayout),
		tx.Category,
		tx.Amount,
		tx.Note,
		tx.CreatedAt.Format(time.RFC3339Nano),
	)
	if err := row.Scan(&tx.ID); err != nil {
		return Transaction{}, fmt.Errorf("%w: insert transaction: %w", ErrStorageFailure, err)
	}
	tx.Date = tx.Date.UTC().Truncate(time.Second)
	return tx, nil
}

// ListTransactions returns every transaction ordered by date.
func (s *Store) ListTransactions(ctx context.Context) ([]Transaction, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, listTransactionsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrStorageFailure, err)
	}
	defer rows.Close()

	txs := make([]Transaction, 0)
	for rows.Next() {
		var (
			tx        Transaction
			date      string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Category, &tx.Amount, &tx.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", ErrStorageFailure, err)
		}
		if tx.Date, err = time.ParseInLocation(DateTimeLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("%w: parse transaction date %q: %w", ErrStorageFailure, date, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("%w: parse created_at %q: %w", ErrStorageFailure, createdAt, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrStorageFailure, err)
	}
	return txs, nil
}

func scanSignalRecord(rows *sql.Rows) (SignalRecord, error) {
	var (
		rec       SignalRecord
		date      string
		sig       int64
		createdAt string
		closeVal  decimal.Decimal
		average   decimal.Decimal
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Ticker,
		&date,
		&closeVal,
		&average,
		&sig,
		&createdAt,
	); err != nil {
		return SignalRecord{}, fmt.Errorf("%w: scan signal row: %w", ErrStorageFailure, err)
	}

	parsedDate, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return SignalRecord{}, fmt.Errorf("%w: parse signal date %q: %w", ErrStorageFailure, date, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return SignalRecord{}, fmt.Errorf("%w: parse created_at %q: %w", ErrStorageFailure, createdAt, err)
	}

	rec.Date = parsedDate
	rec.Close = closeVal
	rec.Average = average
	rec.Signal = signal.Signal(sig)
	rec.CreatedAt = created
	return rec, nil
}

var (
	_ SignalStore      = (*Store)(nil)
	_ TransactionStore = (*Store)(nil)
)
