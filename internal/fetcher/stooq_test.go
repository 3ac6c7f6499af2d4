package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

func TestStooqFetchSuccess(t *testing.T) {
	var gotSymbol, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("s")
		gotFrom = r.URL.Query().Get("d1")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Date,Open,High,Low,Close,Volume\n2024-01-02,1,1,1,10.5,100\n2024-01-03,1,1,1,11,100\n2024-01-03,1,1,1,12,100\n"))
	}))
	defer srv.Close()

	s := NewStooq(StooqOptions{BaseURL: srv.URL, Suffix: ".us", Timeout: time.Second}, noopLogger())
	bars, err := s.FetchHistory(context.Background(), "AAPL", date(2024, 1, 1), date(2024, 1, 31))
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if gotSymbol != "aapl.us" || gotFrom != "20240101" {
		t.Fatalf("unexpected query s=%s d1=%s", gotSymbol, gotFrom)
	}
	if len(bars) != 2 {
		t.Fatalf("duplicate dates should collapse, got %d bars", len(bars))
	}
	if !bars[1].Close.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("last observation for a day should win, got %s", bars[1].Close)
	}
}

func TestStooqFetchNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("No data"))
	}))
	defer srv.Close()

	s := NewStooq(StooqOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := s.FetchHistory(context.Background(), "zzz.us", date(2024, 1, 1), date(2024, 1, 31)); !errors.Is(err, signal.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestStooqSymbolSuffix(t *testing.T) {
	s := NewStooq(StooqOptions{Suffix: ".US"}, noopLogger())
	if got := s.stooqSymbol("MSFT"); got != "msft.us" {
		t.Fatalf("got %s", got)
	}
	if got := s.stooqSymbol("cdr.pl"); got != "cdr.pl" {
		t.Fatalf("qualified symbols keep their market, got %s", got)
	}
}
