package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// maskInput hides a password while keeping its length visible.
func maskInput(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one labelled text input of a form.
type field struct {
	label  string
	value  string
	secret bool
}

// renderForm renders labelled inputs with a cursor on the focused one.
func renderForm(fields []field, focus int) string {
	var b strings.Builder
	for i, f := range fields {
		value := f.value
		if f.secret {
			value = maskInput(value)
		}
		label := dimStyle.Render(padRight(f.label, 14))
		if i == focus {
			label = accentStyle.Render(padRight(f.label, 14))
			value = normalStyle.Render(value) + accentStyle.Render("█")
		} else if value == "" {
			value = inputPlaceholderStyle.Render("-")
		} else {
			value = normalStyle.Render(value)
		}
		b.WriteString("  " + label + " " + value + "\n")
	}
	return b.String()
}

func padRight(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}
