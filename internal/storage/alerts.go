package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"savetrack/internal/signal"
)

const (
	insertAlertSQL = `INSERT INTO alerts (
        ticker,
        date,
        signal,
        run_id,
        sent_at
    ) VALUES (?, ?, ?, ?, ?);`

	lastAlertSQL = `SELECT
        id,
        ticker,
        date,
        signal,
        run_id,
        sent_at
    FROM alerts
    WHERE ticker = ?
    ORDER BY id DESC
    LIMIT 1;`
)

// AlertRecord remembers a dispatched crossover notification.
type AlertRecord struct {
	ID     int64
	Ticker string
	Date   time.Time
	Signal signal.Signal
	RunID  string
	SentAt time.Time
}

// AlertLog persists sent alerts so repeated runs do not re-send them.
type AlertLog interface {
	LastAlert(ctx context.Context, ticker string) (AlertRecord, bool, error)
	RecordAlert(ctx context.Context, rec AlertRecord) error
}

// RecordAlert stores one sent alert.
func (s *Store) RecordAlert(ctx context.Context, rec AlertRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	sentAt := rec.SentAt
	if sentAt.IsZero() {
		sentAt = s.clock()
	}
	if _, err := db.ExecContext(ctx, rebind(s.dialect, insertAlertSQL),
		rec.Ticker,
		rec.Date.UTC().Format(DateLayout),
		int64(rec.Signal),
		rec.RunID,
		sentAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("%w: insert alert: %w", ErrStorageFailure, err)
	}
	return nil
}

// LastAlert returns the most recent alert for ticker. ok is false when none was sent.
func (s *Store) LastAlert(ctx context.Context, ticker string) (AlertRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return AlertRecord{}, false, err
	}

	var (
		rec    AlertRecord
		date   string
		sig    int64
		sentAt string
	)
	row := db.QueryRowContext(ctx, rebind(s.dialect, lastAlertSQL), ticker)
	if err := row.Scan(&rec.ID, &rec.Ticker, &date, &sig, &rec.RunID, &sentAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AlertRecord{}, false, nil
		}
		return AlertRecord{}, false, fmt.Errorf("%w: last alert: %w", ErrStorageFailure, err)
	}
	if rec.Date, err = time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		return AlertRecord{}, false, fmt.Errorf("%w: parse alert date %q: %w", ErrStorageFailure, date, err)
	}
	if rec.SentAt, err = time.Parse(time.RFC3339Nano, sentAt); err != nil {
		return AlertRecord{}, false, fmt.Errorf("%w: parse sent_at %q: %w", ErrStorageFailure, sentAt, err)
	}
	rec.Signal = signal.Signal(sig)
	return rec, true, nil
}

var _ AlertLog = (*Store)(nil)
