// Package savings derives balances and category breakdowns from stored transactions.
package savings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"savetrack/internal/storage"
)

// Kind distinguishes deposits from withdrawals on entry.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// ParseKind accepts deposit/withdrawal and their short forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit", "in", "":
		return KindDeposit, nil
	case "withdrawal", "withdraw", "out":
		return KindWithdrawal, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// SignedAmount stores withdrawals as negative amounts; deposits keep the entered value.
func SignedAmount(kind Kind, amount decimal.Decimal) decimal.Decimal {
	if kind == KindWithdrawal {
		return amount.Abs().Neg()
	}
	return amount
}

// Entry pairs a transaction with the balance after it.
type Entry struct {
	Transaction storage.Transaction
	Running     decimal.Decimal
}

// CategoryTotal is the net amount booked to a category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// Summary is the derived view over all transactions.
type Summary struct {
	Balance    decimal.Decimal
	Deposits   decimal.Decimal
	Withdrawn  decimal.Decimal
	Entries    []Entry
	Categories []CategoryTotal
}

// Cumulative returns the running balance after each transaction, in the given order.
func Cumulative(txs []storage.Transaction) []decimal.Decimal {
	out := make([]decimal.Decimal, len(txs))
	running := decimal.Zero
	for i, tx := range txs {
		running = running.Add(tx.Amount)
		out[i] = running
	}
	return out
}

// Summarize computes the balance, running totals and per-category totals.
func Summarize(txs []storage.Transaction) Summary {
	running := Cumulative(txs)
	summary := Summary{
		Balance:   decimal.Zero,
		Deposits:  decimal.Zero,
		Withdrawn: decimal.Zero,
		Entries:   make([]Entry, len(txs)),
	}

	totals := make(map[string]*CategoryTotal)
	for i, tx := range txs {
		summary.Entries[i] = Entry{Transaction: tx, Running: running[i]}
		if tx.Amount.IsNegative() {
			summary.Withdrawn = summary.Withdrawn.Add(tx.Amount.Abs())
		} else {
			summary.Deposits = summary.Deposits.Add(tx.Amount)
		}

		ct, ok := totals[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category, Total: decimal.Zero}
			totals[tx.Category] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++
	}
	if len(running) > 0 {
		summary.Balance = running[len(running)-1]
	}

	summary.Categories = make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		summary.Categories = append(summary.Categories, *ct)
	}
	slices.SortFunc(summary.Categories, func(a, b CategoryTotal) int {
		return strings.Compare(a.Category, b.Category)
	})
	return summary
}
