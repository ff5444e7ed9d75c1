package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	failedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1)
)

type summaryRow struct {
	op, mode                string
	passed, failed, skipped int
	maxDiff, tolerance      float64
}

func printSummary(rows []summaryRow) {
	failedRows := make(map[int]bool)
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0:
				s = headerRowStyle
			case failedRows[row]:
				s = failedRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			if col >= 2 {
				s = s.Align(lipgloss.Right)
			}
			return
		})
	table.Headers("Operator", "Mode", "Pass", "Fail", "Skip", "Max |diff|", "Tolerance")
	for ii, row := range rows {
		if row.failed > 0 {
			failedRows[ii] = true
		}
		table.Row(row.op, row.mode,
			fmt.Sprintf("%d", row.passed),
			fmt.Sprintf("%d", row.failed),
			fmt.Sprintf("%d", row.skipped),
			fmt.Sprintf("%.3g", row.maxDiff),
			fmt.Sprintf("%g", row.tolerance))
	}
	fmt.Println(table.Render())
}
