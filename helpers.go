package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	trackingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

// PrintTable writes an aligned table. Rows whose index is set in highlight
// are rendered in the tracking colour.
func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string, highlight []bool) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			fmt.Fprintf(&b, "%-*s", colWidths[i], cell)
			if i < len(cells)-1 {
				b.WriteString("  ")
			}
		}
		return strings.TrimRight(b.String(), " ")
	}

	// print header
	fmt.Fprintln(w, headerStyle.Render(line(headers)))

	// print rows
	for r, row := range rows {
		text := line(row)
		if r < len(highlight) && highlight[r] {
			text = trackingStyle.Render(text)
		}
		fmt.Fprintln(w, text)
	}

	// print footer
	if len(footers) > 0 {
		fmt.Fprintln(w, footerStyle.Render(line(footers)))
	}
}

// PeriodRange returns the [start, end) window of a history period around now.
// Weeks start on Monday.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	var startTime, endTime time.Time

	switch period {
	case "day":
		startTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endTime = startTime.AddDate(0, 0, 1)
	case "week":
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}
		startTime = time.Date(now.Year(), now.Month(), now.Day()-offset+1, 0, 0, 0, 0, now.Location())
		endTime = startTime.AddDate(0, 0, 7)
	case "month":
		startTime = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		endTime = startTime.AddDate(0, 1, 0)
	case "year":
		startTime = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		endTime = startTime.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid history period: %s (want day, week, month or year)", period)
	}

	return startTime, endTime, nil
}
