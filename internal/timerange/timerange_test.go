package timerange

import (
	"testing"
	"time"
)

func day(hh, mm, ss int) time.Time {
	return time.Date(2025, 6, 10, hh, mm, ss, 0, time.Local)
}

func TestNewRejectsBadInput(t *testing.T) {
	now := day(12, 0, 0)
	if _, err := New("9 o'clock", "17:00:00", "", now); err == nil {
		t.Fatalf("expected error for malformed start time")
	}
	if _, err := New("09:00:00", "", "", now); err == nil {
		t.Fatalf("expected error for start without end")
	}
	if _, err := New("17:00:00", "09:00:00", "", now); err == nil {
		t.Fatalf("expected error for window spanning midnight")
	}
}

func TestIsBetweenMonotone(t *testing.T) {
	r, err := New("09:00:00", "17:00:00", "", day(0, 0, 0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{day(8, 59, 59), false},
		{day(9, 0, 0), true}, // inclusive lower bound
		{day(12, 30, 0), true},
		{day(17, 0, 0), true}, // inclusive upper bound
		{day(17, 0, 1), false},
	}
	for _, c := range cases {
		if got := r.IsBetween(c.at); got != c.want {
			t.Fatalf("IsBetween(%v) = %v, want %v", c.at, got, c.want)
		}
	}
}

func TestUnsetWindowAlwaysOpen(t *testing.T) {
	for _, pair := range [][2]string{{"", ""}, {"00:00:00", "00:00:00"}} {
		r, err := New(pair[0], pair[1], "", day(0, 0, 0))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if !r.IsBetween(day(3, 0, 0)) || !r.IsBetween(day(23, 59, 59)) {
			t.Fatalf("unset window must always be open")
		}
		if r.StartEpoch() != 0 || r.EndEpoch() != 0 {
			t.Fatalf("unset window must have zero epochs")
		}
	}
}

func TestNeedRestartWindow(t *testing.T) {
	r, err := New("", "", "12:00:00", day(0, 0, 0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !r.RestartSupported() {
		t.Fatalf("restart should be supported")
	}
	if r.NeedRestart(day(11, 59, 59)) {
		t.Fatalf("restart must not fire before the instant")
	}
	if !r.NeedRestart(day(12, 0, 0)) || !r.NeedRestart(day(12, 0, 60)) {
		t.Fatalf("restart must fire inside [restart, restart+60s]")
	}
	if r.NeedRestart(day(12, 1, 1)) {
		t.Fatalf("restart must not fire after the acceptance window")
	}
}

func TestNoRestartConfigured(t *testing.T) {
	r, err := New("09:00:00", "17:00:00", "", day(0, 0, 0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.RestartSupported() || r.NeedRestart(day(12, 0, 0)) {
		t.Fatalf("restart must be disabled when unset")
	}
}

func TestPrepareReanchors(t *testing.T) {
	r, err := New("09:00:00", "17:00:00", "12:00:00", day(0, 0, 0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	before := r.StartEpoch()
	r.Prepare(day(0, 0, 0).AddDate(0, 0, 1))
	if got := r.StartEpoch() - before; got != 86400 {
		t.Fatalf("expected start epoch to advance by 86400, got %d", got)
	}
	if r.RestartEpoch()-before != 86400+3*3600 {
		t.Fatalf("restart epoch not re-anchored")
	}
}
