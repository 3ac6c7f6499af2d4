package inspect

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `date,category,amount,balance
2024-01-01,Salary,100,100
2024-01-02,Rent,-30,70
2024-01-03,Salary,50,120
2024-01-04,Food,NaN,120
2024-01-05,Food,-20,100
2024-01-06,Gift,10,110
`

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReadHeadAndColumns(t *testing.T) {
	report, err := Read(strings.NewReader(sample), 5)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"date", "category", "amount", "balance"}
	if strings.Join(report.Columns, ",") != strings.Join(want, ",") {
		t.Fatalf("columns = %v", report.Columns)
	}
	if report.Rows != 6 {
		t.Fatalf("rows = %d", report.Rows)
	}
	if len(report.Head) != 5 || report.Head[0][1] != "Salary" {
		t.Fatalf("head = %v", report.Head)
	}
}

func TestReadDescribesNumericColumnsOnly(t *testing.T) {
	report, err := Read(strings.NewReader(sample), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(report.Head) != 0 {
		t.Fatalf("head 0 should show nothing, got %d rows", len(report.Head))
	}
	if len(report.Stats) != 2 {
		t.Fatalf("expected stats for amount and balance, got %+v", report.Stats)
	}

	amount := report.Stats[0]
	if amount.Column != "amount" || amount.Count != 5 {
		t.Fatalf("amount stats = %+v", amount)
	}
	if !almostEqual(amount.Mean, 22) || amount.Min != -30 || amount.Max != 100 || amount.Median != 10 {
		t.Fatalf("amount stats = %+v", amount)
	}
}

func TestDescribeQuantiles(t *testing.T) {
	s := Describe("x", []float64{4, 1, 3, 2})
	if s.Q25 != 1.75 || s.Median != 2.5 || s.Q75 != 3.25 {
		t.Fatalf("quantiles = %v %v %v", s.Q25, s.Median, s.Q75)
	}
	if !almostEqual(s.Std, math.Sqrt(5.0/3.0)) {
		t.Fatalf("std = %v", s.Std)
	}

	single := Describe("y", []float64{7})
	if !math.IsNaN(single.Std) || single.Mean != 7 {
		t.Fatalf("single-value stats = %+v", single)
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(strings.NewReader(""), 5); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestFileRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("\ufeffa,b\n1\n2,3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	report, err := File(path, 5)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if report.Columns[0] != "a" {
		t.Fatalf("BOM should be stripped, got %q", report.Columns[0])
	}
	if len(report.Head[0]) != 2 || report.Head[0][1] != "" {
		t.Fatalf("short rows should be padded, got %v", report.Head[0])
	}
	if report.Stats[1].Count != 1 {
		t.Fatalf("b should count one value, got %+v", report.Stats[1])
	}
}
