package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vovakirdan/skirmish/internal/battle"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	resultStyles = map[string]lipgloss.Style{
		battle.ResultPlayer1Wins.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		battle.ResultPlayer2Wins.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		battle.ResultDraw.String():        lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}
)

// newTable returns a bordered table with the shared header and cell styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// styleResult colours a stored result name.
func styleResult(result string) string {
	if s, ok := resultStyles[result]; ok {
		return s.Render(result)
	}
	return dimStyle.Render(result)
}

// field renders one "label value" line of a summary block.
func field(label, value string) string {
	return "  " + labelStyle.Render(label) + value
}
