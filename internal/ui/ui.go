// Package ui renders command output: message lines, tables, machine-readable
// formats, confirmation prompts and batch progress.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorFaint  = lipgloss.Color("#374151")
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	WarnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	AccentStyle  = lipgloss.NewStyle().Foreground(colorBlue)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorDim)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

func Bold(s string) string  { return BoldStyle.Render(s) }
func Muted(s string) string { return MutedStyle.Render(s) }

// Check renders a green check or a red cross.
func Check(ok bool) string {
	if ok {
		return SuccessStyle.Render("✔")
	}
	return ErrorStyle.Render("✘")
}

func SuccessMsg(format string, a ...any) string {
	return SuccessStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func WarnMsg(format string, a ...any) string {
	return WarnStyle.Render("!") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return ErrorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func InfoMsg(format string, a ...any) string {
	return AccentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

// Table renders a titled table with rounded borders. An empty row set
// renders nothing.
func Table(title string, headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(colorBlue).
		Bold(true).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(colorDim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return cellStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	out := t.String()
	if title != "" {
		out = BoldStyle.Render(title) + "\n" + out
	}
	return out + "\n"
}
