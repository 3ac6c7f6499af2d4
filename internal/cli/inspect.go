package cli

import (
	"github.com/spf13/cobra"

	"savetrack/internal/inspect"
)

var inspectHead int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.csv>",
	Short: "Preview a CSV file: first rows, summary statistics and column names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Inspect(args[0], inspectHead)
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectHead, "head", inspect.DefaultHead, "Number of leading rows to show")
}
