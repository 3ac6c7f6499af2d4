package app

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"savetrack/internal/storage"
)

// ShowSignals prints stored signal rows, newest last.
func (a *App) ShowSignals(ctx context.Context, opts SignalsOptions) error {
	svc, closeStore, err := a.newService(ctx, false, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := svc.Signals(ctx, opts.Ticker, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.Out, "no signals found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Ticker\tDate\tClose\tAverage\tSignal\tRun")
	for _, rec := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Ticker,
			rec.Date.Format(dateLayout),
			formatDecimal(rec.Close, 2),
			formatDecimal(rec.Average, 2),
			rec.Signal,
			shortRunID(rec.RunID),
		)
	}
	return writer.Flush()
}

// ShowSavings prints the balance summary, the ledger with running totals and per-category totals.
func (a *App) ShowSavings(ctx context.Context) error {
	svc, closeStore, err := a.newService(ctx, false, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	summary, err := svc.Savings(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, panel("Savings", [][2]string{
		{"Balance", amountStyle(summary.Balance)},
		{"Deposited", formatDecimal(summary.Deposits, 2)},
		{"Withdrawn", formatDecimal(summary.Withdrawn, 2)},
		{"Transactions", strconv.Itoa(len(summary.Entries))},
	}))
	if len(summary.Entries) == 0 {
		fmt.Fprintln(a.Out, "no transactions recorded")
		return nil
	}

	ledger := newTable("#", "Date", "Category", "Amount", "Balance", "Note")
	for _, entry := range summary.Entries {
		tx := entry.Transaction
		ledger.Row(
			strconv.FormatInt(tx.ID, 10),
			tx.Date.UTC().Format(storage.DateTimeLayout),
			tx.Category,
			amountStyle(tx.Amount),
			formatDecimal(entry.Running, 2),
			sanitizeInline(tx.Note),
		)
	}
	fmt.Fprintln(a.Out, ledger.Render())

	categories := newTable("Category", "Entries", "Total")
	for _, cat := range summary.Categories {
		categories.Row(cat.Category, strconv.Itoa(cat.Count), amountStyle(cat.Total))
	}
	fmt.Fprintln(a.Out, categories.Render())
	return nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
