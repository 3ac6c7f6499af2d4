package cli

import (
	"github.com/spf13/cobra"

	"savetrack/internal/app"
)

var (
	exportTicker    string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored data as CSV and/or PNG chart",
}

var exportSignalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Export signal rows with close and moving average",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ExportSignals(cmd.Context(), exportOptions())
	},
}

var exportSavingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Export transactions with running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ExportSavings(cmd.Context(), exportOptions())
	},
}

func exportOptions() app.ExportOptions {
	return app.ExportOptions{
		Ticker:    exportTicker,
		PNGPath:   exportPNGPath,
		CSVPath:   exportCSVPath,
		MaxPoints: exportMaxPoints,
	}
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.PersistentFlags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.PersistentFlags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
	exportSignalsCmd.Flags().StringVar(&exportTicker, "ticker", "", "Only export this ticker")

	exportCmd.AddCommand(exportSignalsCmd)
	exportCmd.AddCommand(exportSavingsCmd)
}
