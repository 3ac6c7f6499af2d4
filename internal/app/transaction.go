package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"savetrack/internal/savings"
	"savetrack/internal/service"
	"savetrack/internal/storage"
)

// AddTransaction records a deposit or withdrawal.
func (a *App) AddTransaction(ctx context.Context, opts TransactionOptions) error {
	kind, err := savings.ParseKind(opts.Kind)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(opts.Amount))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", opts.Amount, err)
	}

	svc, closeStore, err := a.newService(ctx, false, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	in := service.TransactionInput{Kind: kind, Category: opts.Category, Amount: amount, Note: opts.Note}
	if opts.Date != nil {
		in.Date = *opts.Date
	}

	tx, err := svc.AddTransaction(ctx, in)
	if err != nil {
		return err
	}
	a.printf("recorded #%d %s %s on %s\n", tx.ID, tx.Category, amountStyle(tx.Amount), tx.Date.UTC().Format(storage.DateTimeLayout))
	return nil
}
