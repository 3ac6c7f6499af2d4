// Package inspect previews an arbitrary CSV file: leading rows, numeric column statistics and column names.
package inspect

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// DefaultHead is the number of rows shown when no explicit count is given.
const DefaultHead = 5

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// Stats mirrors a describe() column: count, mean, std, min, quartiles, max.
type Stats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Report is the full preview of one CSV file.
type Report struct {
	Columns []string
	Head    [][]string
	Rows    int
	Stats   []Stats
}

// File opens path and builds a Report with up to head leading rows.
func File(path string, head int) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, head)
}

// Read parses the CSV stream and builds a Report.
func Read(r io.Reader, head int) (Report, error) {
	if head < 0 {
		head = DefaultHead
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Report{}, ErrEmptyFile
	}
	if err != nil {
		return Report{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	report := Report{Columns: columns}
	values := make([][]float64, len(columns))
	numeric := make([]bool, len(columns))
	for i := range numeric {
		numeric[i] = true
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("read row %d: %w", report.Rows+1, err)
		}
		report.Rows++
		if len(report.Head) < head {
			report.Head = append(report.Head, padRecord(record, len(columns)))
		}

		for i := range columns {
			if !numeric[i] || i >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i])
			if isMissing(cell) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric[i] = false
				values[i] = nil
				continue
			}
			values[i] = append(values[i], v)
		}
	}

	for i, col := range columns {
		if !numeric[i] || len(values[i]) == 0 {
			continue
		}
		report.Stats = append(report.Stats, Describe(col, values[i]))
	}
	return report, nil
}

// Describe summarises values. Std uses the sample (n-1) denominator and quantiles
// interpolate linearly between closest ranks.
func Describe(column string, values []float64) Stats {
	s := Stats{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(sorted)-1))
	} else {
		s.Std = math.NaN()
	}

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func isMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null", "n/a":
		return true
	}
	return false
}

func padRecord(record []string, width int) []string {
	if len(record) >= width {
		return record[:width]
	}
	out := make([]string, width)
	copy(out, record)
	return out
}
