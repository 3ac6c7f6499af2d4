package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"savetrack/internal/app"
	"savetrack/internal/savings"
)

type transactionFlags struct {
	amount   string
	category string
	note     string
	date     string
}

var (
	depositFlags  transactionFlags
	withdrawFlags transactionFlags
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Record money saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		return addTransaction(cmd, savings.KindDeposit, depositFlags)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Record money taken out of savings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return addTransaction(cmd, savings.KindWithdrawal, withdrawFlags)
	},
}

func addTransaction(cmd *cobra.Command, kind savings.Kind, flags transactionFlags) error {
	if flags.amount == "" {
		return fmt.Errorf("--amount must be provided")
	}
	if flags.category == "" {
		return fmt.Errorf("--category must be provided")
	}
	date, err := parseDate("date", flags.date)
	if err != nil {
		return err
	}

	opts := app.TransactionOptions{
		Kind:     string(kind),
		Category: flags.category,
		Amount:   flags.amount,
		Note:     flags.note,
		Date:     date,
	}
	return getApp().AddTransaction(cmd.Context(), opts)
}

func bindTransactionFlags(cmd *cobra.Command, flags *transactionFlags) {
	cmd.Flags().StringVar(&flags.amount, "amount", "", "Amount, e.g. 125.50")
	cmd.Flags().StringVar(&flags.category, "category", "", "Category label")
	cmd.Flags().StringVar(&flags.note, "note", "", "Optional free-text note")
	cmd.Flags().StringVar(&flags.date, "date", "", "Date (YYYY-MM-DD, defaults to now)")
}

func init() {
	bindTransactionFlags(depositCmd, &depositFlags)
	bindTransactionFlags(withdrawCmd, &withdrawFlags)
}
