package dateutil

import (
	"testing"
	"time"
)

func TestCurrent(t *testing.T) {
	at := time.Date(2025, 2, 14, 23, 59, 50, 0, time.Local)
	if got := Current(at); got != "2025-02-14" {
		t.Fatalf("unexpected date string: %q", got)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-02-14", true},
		{"2024-02-29", true},  // leap year
		{"2025-02-29", false}, // not a leap year
		{"2000-02-29", true},  // divisible by 400
		{"1900-02-29", false}, // divisible by 100 but not 400
		{"2025-12-31", true},
		{"2025-04-31", false},
		{"2025-13-01", false},
		{"2025-00-10", false},
		{"2025-01-00", false},
		{"2025-1-1", false},
		{"20250101", false},
		{"", false},
		{"not-a-date", false},
	}
	for _, c := range cases {
		if got := Valid(c.in); got != c.ok {
			t.Fatalf("Valid(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}
