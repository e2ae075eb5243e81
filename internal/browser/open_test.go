package browser

import "testing"

func TestPageURL(t *testing.T) {
	tests := []struct {
		base     string
		resource string
		id       int64
		want     string
	}{
		{"http://localhost:5173", "hotels", 3, "http://localhost:5173/hotels/3"},
		{"https://booknstay.test/", "events", 12, "https://booknstay.test/events/12"},
	}
	for _, tt := range tests {
		if got := PageURL(tt.base, tt.resource, tt.id); got != tt.want {
			t.Errorf("PageURL(%q, %q, %d) = %q, want %q", tt.base, tt.resource, tt.id, got, tt.want)
		}
	}
}

func TestOpener(t *testing.T) {
	name, args, err := opener("windows")
	if err != nil || name != "rundll32" || len(args) != 1 {
		t.Errorf("opener(windows) = %q, %v, %v", name, args, err)
	}
	if name, _, err := opener("linux"); err != nil || name != "xdg-open" {
		t.Errorf("opener(linux) = %q, %v", name, err)
	}
	if _, _, err := opener("plan9"); err == nil {
		t.Error("opener(plan9) should fail")
	}
}
