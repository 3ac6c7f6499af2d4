package savings

import (
	"testing"

	"github.com/shopspring/decimal"

	"savetrack/internal/storage"
)

func txs(amounts ...int64) []storage.Transaction {
	out := make([]storage.Transaction, len(amounts))
	for i, a := range amounts {
		out[i] = storage.Transaction{Amount: decimal.NewFromInt(a), Category: "General"}
	}
	return out
}

func TestCumulative(t *testing.T) {
	got := Cumulative(txs(100, -30, 50))
	want := []int64{100, 70, 120}
	for i := range want {
		if !got[i].Equal(decimal.NewFromInt(want[i])) {
			t.Fatalf("index %d: got %s, want %d", i, got[i], want[i])
		}
	}
	if len(Cumulative(nil)) != 0 {
		t.Fatal("empty input yields no totals")
	}
}

func TestSignedAmount(t *testing.T) {
	if got := SignedAmount(KindWithdrawal, decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("withdrawal should be negative, got %s", got)
	}
	if got := SignedAmount(KindWithdrawal, decimal.NewFromInt(-25)); !got.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("negative withdrawal stays negative, got %s", got)
	}
	if got := SignedAmount(KindDeposit, decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("deposit unchanged, got %s", got)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"Deposit": KindDeposit, "withdraw": KindWithdrawal, "OUT": KindWithdrawal, "": KindDeposit} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); err == nil {
		t.Fatal("unknown kind should fail")
	}
}

func TestSummarize(t *testing.T) {
	list := []storage.Transaction{
		{Category: "Travel", Amount: decimal.NewFromInt(200)},
		{Category: "Emergency", Amount: decimal.NewFromInt(100)},
		{Category: "Travel", Amount: decimal.NewFromInt(-80)},
	}
	s := Summarize(list)

	if !s.Balance.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("balance %s", s.Balance)
	}
	if !s.Deposits.Equal(decimal.NewFromInt(300)) || !s.Withdrawn.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("deposits %s withdrawn %s", s.Deposits, s.Withdrawn)
	}
	if len(s.Categories) != 2 || s.Categories[0].Category != "Emergency" {
		t.Fatalf("categories should be sorted: %+v", s.Categories)
	}
	if !s.Categories[1].Total.Equal(decimal.NewFromInt(120)) || s.Categories[1].Count != 2 {
		t.Fatalf("travel total %+v", s.Categories[1])
	}
	if !s.Entries[2].Running.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("last running total %s", s.Entries[2].Running)
	}
}
