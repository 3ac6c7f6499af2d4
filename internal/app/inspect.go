package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"savetrack/internal/inspect"
)

// Inspect prints the first rows, numeric statistics and the column names of a CSV file.
func (a *App) Inspect(path string, head int) error {
	report, err := inspect.File(path, head)
	if err != nil {
		return err
	}
	a.Logger.Debug().Str("path", path).Int("rows", report.Rows).Msg("inspected csv")

	fmt.Fprintf(a.Out, "First %d rows:\n", len(report.Head))
	preview := newTable(report.Columns...)
	for _, row := range report.Head {
		preview.Row(row...)
	}
	fmt.Fprintln(a.Out, preview.Render())

	fmt.Fprintln(a.Out, "\nSummary of the stats:")
	if len(report.Stats) == 0 {
		fmt.Fprintln(a.Out, "no numeric columns")
	} else {
		headers := []string{""}
		for _, s := range report.Stats {
			headers = append(headers, s.Column)
		}
		stats := newTable(headers...)
		for _, line := range []struct {
			label string
			value func(inspect.Stats) string
		}{
			{"count", func(s inspect.Stats) string { return strconv.Itoa(s.Count) }},
			{"mean", func(s inspect.Stats) string { return formatStat(s.Mean) }},
			{"std", func(s inspect.Stats) string { return formatStat(s.Std) }},
			{"min", func(s inspect.Stats) string { return formatStat(s.Min) }},
			{"25%", func(s inspect.Stats) string { return formatStat(s.Q25) }},
			{"50%", func(s inspect.Stats) string { return formatStat(s.Median) }},
			{"75%", func(s inspect.Stats) string { return formatStat(s.Q75) }},
			{"max", func(s inspect.Stats) string { return formatStat(s.Max) }},
		} {
			cells := []string{line.label}
			for _, s := range report.Stats {
				cells = append(cells, line.value(s))
			}
			stats.Row(cells...)
		}
		fmt.Fprintln(a.Out, stats.Render())
	}

	fmt.Fprintln(a.Out, "\nColumn names:")
	quoted := make([]string, len(report.Columns))
	for i, c := range report.Columns {
		quoted[i] = strconv.Quote(c)
	}
	fmt.Fprintf(a.Out, "[%s]\n", strings.Join(quoted, ", "))
	return nil
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
