package signal

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func barsFromInts(closes ...int64) []PriceBar {
	bars := make([]PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = PriceBar{Date: day(i), Close: decimal.NewFromInt(c)}
	}
	return bars
}

func TestComputeWorkedExample(t *testing.T) {
	rows, err := Compute(barsFromInts(10, 20, 30))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantAvg := []int64{10, 15, 20}
	wantSig := []Signal{Bearish, Bullish, Bullish}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if !row.Average.Equal(decimal.NewFromInt(wantAvg[i])) {
			t.Fatalf("row %d: average %s, want %d", i, row.Average, wantAvg[i])
		}
		if row.Signal != wantSig[i] {
			t.Fatalf("row %d: signal %s, want %s", i, row.Signal, wantSig[i])
		}
	}
}

func TestComputeFirstAverageEqualsFirstClose(t *testing.T) {
	bars := []PriceBar{{Date: day(0), Close: decimal.RequireFromString("123.45")}}
	rows, err := Compute(bars)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !rows[0].Average.Equal(rows[0].Close) {
		t.Fatalf("first average %s should equal close %s", rows[0].Average, rows[0].Close)
	}
	if rows[0].Signal != Bearish {
		t.Fatalf("tie should classify as bearish, got %s", rows[0].Signal)
	}
}

func TestComputeUsesExactlyTrailingWindow(t *testing.T) {
	closes := make([]int64, 260)
	for i := range closes {
		closes[i] = int64((i*37)%101 + 1)
	}
	rows, err := Compute(barsFromInts(closes...))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i := DefaultWindow - 1; i < len(closes); i++ {
		sum := decimal.Zero
		for j := i - DefaultWindow + 1; j <= i; j++ {
			sum = sum.Add(decimal.NewFromInt(closes[j]))
		}
		want := sum.Div(decimal.NewFromInt(DefaultWindow))
		if !rows[i].Average.Equal(want) {
			t.Fatalf("index %d: average %s, want %s", i, rows[i].Average, want)
		}
	}
}

func TestComputeHasNoLookAhead(t *testing.T) {
	base := make([]int64, 250)
	for i := range base {
		base[i] = int64(100 + i%7)
	}
	original, err := Compute(barsFromInts(base...))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	cut := 180
	altered := append([]int64(nil), base...)
	for i := cut + 1; i < len(altered); i++ {
		altered[i] = 10_000
	}
	changed, err := Compute(barsFromInts(altered...))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i := 0; i <= cut; i++ {
		if !original[i].Average.Equal(changed[i].Average) || original[i].Signal != changed[i].Signal {
			t.Fatalf("index %d changed after altering later closes", i)
		}
	}
}

func TestComputeSortsInput(t *testing.T) {
	bars := barsFromInts(10, 20, 30)
	shuffled := []PriceBar{bars[2], bars[0], bars[1]}

	rows, err := Compute(shuffled)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, row := range rows {
		if !row.Date.Equal(day(i)) {
			t.Fatalf("row %d out of order: %s", i, row.Date)
		}
	}
	if !shuffled[0].Date.Equal(day(2)) {
		t.Fatal("Compute must not reorder the caller's slice")
	}
	if !rows[2].Average.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected average after sort: %s", rows[2].Average)
	}
}

func TestComputeDeterministic(t *testing.T) {
	bars := barsFromInts(5, 3, 8, 1, 9, 9, 2)
	first, err := Compute(bars)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := Compute(bars)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		for i := range first {
			if !first[i].Average.Equal(again[i].Average) || first[i].Signal != again[i].Signal {
				t.Fatalf("run %d differs at %d", run, i)
			}
		}
	}
}

func TestComputeIncreasingSeriesIsBullish(t *testing.T) {
	closes := make([]int64, 300)
	for i := range closes {
		closes[i] = int64(i + 1)
	}
	rows, err := Compute(barsFromInts(closes...))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Signal != Bullish {
			t.Fatalf("index %d: expected bullish, got %s", i, rows[i].Signal)
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	cases := map[string][]PriceBar{
		"empty":     nil,
		"negative":  {{Date: day(0), Close: decimal.NewFromInt(-1)}},
		"duplicate": {{Date: day(0), Close: decimal.NewFromInt(1)}, {Date: day(0), Close: decimal.NewFromInt(2)}},
	}
	for name, bars := range cases {
		if _, err := Compute(bars); !errors.Is(err, ErrDataUnavailable) {
			t.Fatalf("%s: expected ErrDataUnavailable, got %v", name, err)
		}
	}
}

func TestComputeWithWindow(t *testing.T) {
	rows, err := Compute(barsFromInts(10, 20, 30, 40), WithWindow(2))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !rows[3].Average.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected 35, got %s", rows[3].Average)
	}
}

func TestCrossover(t *testing.T) {
	rows := []Row{{Signal: Bearish}, {Signal: Bullish}}
	from, to, ok := Crossover(rows)
	if !ok || from != Bearish || to != Bullish {
		t.Fatalf("expected bearish->bullish crossover, got %v %v %v", from, to, ok)
	}
	if _, _, ok := Crossover(rows[1:]); ok {
		t.Fatal("single row cannot cross")
	}
	if _, _, ok := Crossover([]Row{{Signal: Bullish}, {Signal: Bullish}}); ok {
		t.Fatal("unchanged signal is not a crossover")
	}
}
