package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/imamik/hsmv/internal/util/async"
)

func renderView(m Model) string {
	var b strings.Builder
	if m.Finished {
		renderSummary(&b, m)
		return b.String()
	}

	b.WriteString(m.Spinner.View())
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("  ")
	renderProgressBar(&b, m)
	b.WriteString("\n")
	return b.String()
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := m.progress()
	barWidth := 40
	if m.Width > 0 && m.Width < 100 {
		barWidth = m.Width - 60
		if barWidth < 10 {
			barWidth = 10
		}
	}
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "%s %d/%d", bar, m.Done, m.Total)
	if m.Failed > 0 {
		b.WriteString(" ")
		b.WriteString(failedStyle.Render(fmt.Sprintf("%d failed", m.Failed)))
	}
	b.WriteString(dimStyle.Render(" " + formatDuration(m.Elapsed)))
}

func renderSummary(b *strings.Builder, m Model) {
	s := m.Summary
	mark := readyStyle.Render(checkMark)
	switch {
	case len(s.Failed) > 0:
		mark = failedStyle.Render(crossMark)
	case s.Skipped > 0:
		mark = warningStyle.Render(warnMark)
	}

	fmt.Fprintf(b, "%s %s: %s\n", mark, m.Title, SummaryLine(s))
}

// SummaryLine renders "2 succeeded, 1 failed, 3 skipped in 1.2s".
func SummaryLine(s async.Summary) string {
	parts := []string{fmt.Sprintf("%d succeeded", s.Succeeded)}
	if len(s.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(s.Failed)))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}
	return strings.Join(parts, ", ") + " in " + formatDuration(s.Duration)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
