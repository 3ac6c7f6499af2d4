package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"savetrack/internal/app"
)

var (
	strategyTicker string
	strategyStart  string
	strategyEnd    string
	strategyLast   int
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Compute moving-average signals for a ticker and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(strategyTicker) == "" {
			return fmt.Errorf("--ticker must be provided")
		}

		from, err := parseDate("start", strategyStart)
		if err != nil {
			return err
		}
		to, err := parseDate("end", strategyEnd)
		if err != nil {
			return err
		}
		if from != nil && to != nil && !from.Before(*to) {
			return fmt.Errorf("--start must be before --end")
		}

		opts := app.StrategyOptions{
			Ticker: strategyTicker,
			From:   from,
			To:     to,
			Last:   strategyLast,
		}

		return getApp().Strategy(cmd.Context(), opts)
	},
}

func init() {
	strategyCmd.Flags().StringVar(&strategyTicker, "ticker", "", "Ticker symbol, e.g. AAPL")
	strategyCmd.Flags().StringVar(&strategyStart, "start", "", "Start date (YYYY-MM-DD, defaults to strategy.default_from)")
	strategyCmd.Flags().StringVar(&strategyEnd, "end", "", "End date (YYYY-MM-DD, defaults to today)")
	strategyCmd.Flags().IntVar(&strategyLast, "last", 0, "Rows to print (defaults to strategy.show_last)")
}
