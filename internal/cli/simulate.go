package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateTicker  string
	simulateClose   float64
	simulateAverage float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次均线信号翻转并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateClose <= 0 || simulateAverage <= 0 {
			return errors.New("--close 与 --average 必须大于 0")
		}

		closePrice := decimal.NewFromFloat(simulateClose)
		average := decimal.NewFromFloat(simulateAverage)
		return getApp().SimulateAlert(cmd.Context(), simulateTicker, closePrice, average)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateTicker, "ticker", "TEST", "模拟的标的代码")
	simulateCmd.Flags().Float64Var(&simulateClose, "close", 0, "收盘价")
	simulateCmd.Flags().Float64Var(&simulateAverage, "average", 0, "均线值")
}
