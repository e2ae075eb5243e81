package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qamarabbas408/booknstay/pkg/client"
)

// formatTime renders a relative timestamp for booking lists.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < 0:
		return "upcoming"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatDate renders a calendar date, or "-" for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Mon 02 Jan 2006")
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace in descriptions.
func oneLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// errText renders an API error for the status line.
func errText(err error) string {
	if err == nil {
		return ""
	}
	if client.IsNetwork(err) {
		return "cannot reach the server: " + client.Message(err)
	}
	return client.Message(err)
}

// moveCursor clamps cursor+delta into [0, n).
func moveCursor(cursor, delta, n int) int {
	cursor += delta
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// requestTimeout bounds every request a screen starts.
const requestTimeout = 30 * time.Second
