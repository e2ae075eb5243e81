package tui

import (
	"strings"
	"testing"
)

func TestEditRuneAddCharacters(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "guest@example.co", "m", "guest@example.com"},
		{"append digit", "room", "1", "room1"},
		{"append space", "Sea", " ", "Sea "},
		{"append special", "abc", "!", "abc!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, tc.key)
			if got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspace(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"backspace on single char", "a", ""},
		{"backspace on longer string", "hello", "hell"},
		{"backspace on empty does nothing", "", ""},
		{"backspace removes whole rune", "café", "caf"},
		{"backspace removes emoji", "hello\U0001f600", "hello"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, "backspace")
			if got != tc.want {
				t.Errorf("editRune(%q, 'backspace') = %q, want %q", tc.start, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNamedKeys(t *testing.T) {
	for _, key := range []string{"enter", "esc", "up", "down", "ctrl+c", "ctrl+s", "tab", "shift+tab", "alt+enter"} {
		t.Run(key, func(t *testing.T) {
			if got := editRune("hello", key); got != "hello" {
				t.Errorf("editRune(%q, %q) = %q, want unchanged", "hello", key, got)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	if got := editRune(atLimit, "b"); got != atLimit {
		t.Errorf("editRune at limit grew to %d runes", len([]rune(got)))
	}
	if got := editRune(atLimit, "backspace"); len(got) != maxInputLen-1 {
		t.Errorf("backspace at limit: len = %d, want %d", len(got), maxInputLen-1)
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hell…"},
		{"empty string", "", 5, ""},
		{"single char over", "ab", 1, "…"},
		{"zero width", "ab", 0, ""},
		{"CJK chars", "你好世界", 3, "你好…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncStr(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	result := truncateToHeight(input, 3)
	if strings.Count(result, "\n") > 3 {
		t.Errorf("truncateToHeight(5 lines, 3) = %q", result)
	}
	if strings.Contains(result, "line4") {
		t.Errorf("truncateToHeight result should not contain line4: %q", result)
	}
	if got := truncateToHeight(input, 0); got != input {
		t.Errorf("truncateToHeight with maxLines=0 changed input: %q", got)
	}
	if got := truncateToHeight(input, 10); got != input {
		t.Errorf("truncateToHeight within limit changed input: %q", got)
	}
}

func TestMaskInput(t *testing.T) {
	if got := maskInput("pässword"); got != strings.Repeat("•", 8) {
		t.Errorf("maskInput() = %q", got)
	}
}

func TestRenderFormHidesSecrets(t *testing.T) {
	out := renderForm([]field{{label: "Email", value: "a@b.c"}, {label: "Password", value: "hunter2", secret: true}}, 0)
	if !strings.Contains(out, "a@b.c") {
		t.Errorf("form missing plain value: %q", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("form leaked secret: %q", out)
	}
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		cursor, delta, n, want int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 2},
		{0, -1, 3, 0},
		{0, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := moveCursor(tt.cursor, tt.delta, tt.n); got != tt.want {
			t.Errorf("moveCursor(%d, %d, %d) = %d, want %d", tt.cursor, tt.delta, tt.n, got, tt.want)
		}
	}
}
