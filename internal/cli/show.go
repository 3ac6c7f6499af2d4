package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"savetrack/internal/app"
)

var (
	signalsTicker string
	signalsLimit  int
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Display stored investment signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if signalsLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		opts := app.SignalsOptions{
			Ticker: signalsTicker,
			Limit:  signalsLimit,
		}

		return getApp().ShowSignals(cmd.Context(), opts)
	},
}

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Display the savings ledger with running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ShowSavings(cmd.Context())
	},
}

func init() {
	signalsCmd.Flags().StringVar(&signalsTicker, "ticker", "", "Only show this ticker")
	signalsCmd.Flags().IntVar(&signalsLimit, "limit", 20, "Number of most recent rows to display (0 for all)")
}
