package app

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"savetrack/internal/savings"
	"savetrack/internal/storage"
)

// ExportSignals renders stored signal rows for one ticker as CSV and/or a close-vs-average chart.
func (a *App) ExportSignals(ctx context.Context, opts ExportOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	svc, closeStore, err := a.newService(ctx, false, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := svc.Signals(ctx, opts.Ticker, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Str("ticker", opts.Ticker).Msg("no signals found for export")
		return nil
	}

	downsampled := downsample(records, opts.MaxPoints)
	a.Logger.Info().Int("total", len(records)).Int("exported", len(downsampled)).Msg("exporting signals")

	if opts.CSVPath != "" {
		if err := writeSignalsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeSignalsPNG(opts.PNGPath, downsample(latestRun(records), opts.MaxPoints)); err != nil {
			return err
		}
	}
	return nil
}

// ExportSavings renders the ledger with running balance as CSV and/or a balance chart.
func (a *App) ExportSavings(ctx context.Context, opts ExportOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	svc, closeStore, err := a.newService(ctx, false, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	summary, err := svc.Savings(ctx)
	if err != nil {
		return err
	}
	if len(summary.Entries) == 0 {
		a.Logger.Info().Msg("no transactions found for export")
		return nil
	}

	if opts.CSVPath != "" {
		if err := writeSavingsCSV(opts.CSVPath, summary.Entries); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeSavingsPNG(opts.PNGPath, downsample(summary.Entries, opts.MaxPoints)); err != nil {
			return err
		}
	}
	a.Logger.Info().Int("entries", len(summary.Entries)).Msg("exported savings")
	return nil
}

func downsample[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	if max == 1 {
		return items[len(items)-1:]
	}

	result := make([]T, 0, max)
	step := float64(len(items)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(items) {
			idx = len(items) - 1
		}
		result = append(result, items[idx])
	}
	return result
}

// latestRun keeps only rows from the most recent run so the chart has one point per date.
func latestRun(records []storage.SignalRecord) []storage.SignalRecord {
	if len(records) == 0 {
		return records
	}
	newest := records[0]
	for _, rec := range records[1:] {
		if rec.ID > newest.ID {
			newest = rec
		}
	}
	out := make([]storage.SignalRecord, 0, len(records))
	for _, rec := range records {
		if rec.RunID == newest.RunID && rec.Ticker == newest.Ticker {
			out = append(out, rec)
		}
	}
	return out
}

func writeSignalsCSV(path string, records []storage.SignalRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"ticker", "date", "close_price", "ma_200", "signal", "run_id", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		record := []string{
			rec.Ticker,
			rec.Date.Format(storage.DateLayout),
			rec.Close.String(),
			rec.Average.String(),
			strconv.Itoa(int(rec.Signal)),
			rec.RunID,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeSavingsCSV(path string, entries []savings.Entry) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "date", "category", "amount", "note", "balance"}); err != nil {
		return err
	}
	for _, entry := range entries {
		tx := entry.Transaction
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.UTC().Format(storage.DateTimeLayout),
			tx.Category,
			tx.Amount.String(),
			tx.Note,
			entry.Running.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeSignalsPNG(path string, records []storage.SignalRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(records))
	closes := make([]float64, len(records))
	averages := make([]float64, len(records))
	for i, rec := range records {
		x[i] = rec.Date
		closes[i] = rec.Close.InexactFloat64()
		averages[i] = rec.Average.InexactFloat64()
	}
	if len(records) == 1 {
		x = append(x, x[0].Add(24*time.Hour))
		closes = append(closes, closes[0])
		averages = append(averages, averages[0])
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  records[0].Ticker,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Close",
				XValues: x,
				YValues: closes,
			},
			chart.TimeSeries{
				Name:    "Moving average",
				XValues: x,
				YValues: averages,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writeSavingsPNG(path string, entries []savings.Entry) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(entries))
	balance := make([]float64, len(entries))
	for i, entry := range entries {
		x[i] = entry.Transaction.Date
		balance[i] = entry.Running.InexactFloat64()
	}
	// go-chart needs two points to draw a range.
	if len(entries) == 1 {
		x = append(x, x[0].Add(24*time.Hour))
		balance = append(balance, balance[0])
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Balance",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: x,
				YValues: balance,
			},
		},
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
