package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"savetrack/internal/service"
	"savetrack/internal/signal"
)

// Strategy fetches prices for a ticker, stores the computed signals and prints the tail.
func (a *App) Strategy(ctx context.Context, opts StrategyOptions) error {
	svc, closeStore, err := a.newService(ctx, true, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	from := a.defaultFrom()
	if opts.From != nil {
		from = opts.From.UTC()
	}
	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	result, err := svc.RunStrategy(ctx, service.StrategyRequest{Ticker: opts.Ticker, Start: from, End: to})
	if err != nil {
		return err
	}

	latest, _ := signal.Latest(result.Computed)
	fmt.Fprintln(a.Out, panel(fmt.Sprintf("%s %d-day moving average", result.Ticker, a.Config.Strategy.Window), [][2]string{
		{"Range", fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))},
		{"Computed", fmt.Sprintf("%d rows", len(result.Computed))},
		{"Stored", fmt.Sprintf("%d rows for ticker", len(result.Stored))},
		{"Run", result.RunID},
		{"Latest", fmt.Sprintf("%s  close %s  avg %s", signalBadge(latest.Signal), formatDecimal(latest.Close, 2), formatDecimal(latest.Average, 2))},
	}))

	rows := service.Tail(result.Computed, a.Config.ResolveShowLast(opts.Last))
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tClose\tAverage\tSignal")
	for _, row := range rows {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			row.Date.Format(dateLayout),
			formatDecimal(row.Close, 2),
			formatDecimal(row.Average, 2),
			row.Signal,
		)
	}
	return writer.Flush()
}
