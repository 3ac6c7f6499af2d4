package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"savetrack/internal/signal"
)

var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func signalBadge(s signal.Signal) string {
	switch s {
	case signal.Bullish:
		return successStyle.Render("▲ " + s.String())
	case signal.Bearish:
		return errorStyle.Render("▼ " + s.String())
	default:
		return s.String()
	}
}

func amountStyle(d decimal.Decimal) string {
	text := formatDecimal(d, 2)
	if d.IsNegative() {
		return errorStyle.Render(text)
	}
	return successStyle.Render(text)
}

// panel renders a bordered box with a title and label/value lines.
func panel(title string, lines [][2]string) string {
	var content strings.Builder
	width := 0
	for _, line := range lines {
		width = max(width, len(line[0]))
	}
	for i, line := range lines {
		if i > 0 {
			content.WriteByte('\n')
		}
		fmt.Fprintf(&content, "%s  %s", labelStyle.Render(fmt.Sprintf("%-*s", width, line[0])), line[1])
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content.String()))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
