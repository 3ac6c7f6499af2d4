package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"savetrack/internal/config"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLite keeps decimals as TEXT; REAL affinity would round them to float64.
var schemas = map[dialect][]string{
	dialectSQLite: {
		`CREATE TABLE IF NOT EXISTS savings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            date TEXT NOT NULL,
            category TEXT NOT NULL,
            amount TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS investments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            ticker TEXT NOT NULL,
            date TEXT NOT NULL,
            close_price TEXT NOT NULL,
            ma_200 TEXT NOT NULL,
            signal INTEGER NOT NULL,
            created_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_investments_ticker_date ON investments (ticker, date);`,
		`CREATE TABLE IF NOT EXISTS alerts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ticker TEXT NOT NULL,
            date TEXT NOT NULL,
            signal INTEGER NOT NULL,
            run_id TEXT NOT NULL,
            sent_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ticker ON alerts (ticker, id);`,
	},
	dialectPostgres: {
		`CREATE TABLE IF NOT EXISTS savings (
            id BIGSERIAL PRIMARY KEY,
            date TEXT NOT NULL,
            category TEXT NOT NULL,
            amount NUMERIC NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS investments (
            id BIGSERIAL PRIMARY KEY,
            run_id TEXT NOT NULL,
            ticker TEXT NOT NULL,
            date TEXT NOT NULL,
            close_price NUMERIC NOT NULL,
            ma_200 NUMERIC NOT NULL,
            signal SMALLINT NOT NULL,
            created_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_investments_ticker_date ON investments (ticker, date);`,
		`CREATE TABLE IF NOT EXISTS alerts (
            id BIGSERIAL PRIMARY KEY,
            ticker TEXT NOT NULL,
            date TEXT NOT NULL,
            signal SMALLINT NOT NULL,
            run_id TEXT NOT NULL,
            sent_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ticker ON alerts (ticker, id);`,
	},
}

// Open connects to the configured database and creates the schema if absent.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	var (
		driverName string
		source     string
		dia        dialect
	)

	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("database.path is required")
		}
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create database dir: %w", ErrStorageFailure, err)
			}
		}
		driverName, source, dia = "sqlite", cfg.Path, dialectSQLite
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database.dsn is required")
		}
		driverName, source, dia = "pgx", cfg.DSN, dialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorageFailure, driverName, err)
	}

	if dia == dialectSQLite {
		// SQLite：单连接更稳定
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	store := &Store{db: db, dialect: dia}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemas[s.dialect] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create schema: %w", ErrStorageFailure, err)
		}
	}
	return nil
}

// rebind converts ? placeholders into $n for postgres.
func rebind(d dialect, query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
