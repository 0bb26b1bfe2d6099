package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAndRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Idempotent.
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	IncStart("a.service")
	IncStart("a.service")
	IncStop("a.service")
	IncRestart("a.service")
	IncFailure("a.service", "stop")
	IncTick()
	SetWorkingDay(true)
	SetUnitActive("a.service", true)

	if got := testutil.ToFloat64(unitStarts.WithLabelValues("a.service")); got != 2 {
		t.Fatalf("starts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(unitStops.WithLabelValues("a.service")); got != 1 {
		t.Fatalf("stops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(workingDay); got != 1 {
		t.Fatalf("working_day = %v, want 1", got)
	}
	SetWorkingDay(false)
	if got := testutil.ToFloat64(workingDay); got != 0 {
		t.Fatalf("working_day = %v, want 0", got)
	}
	if got := testutil.ToFloat64(unitState.WithLabelValues("a.service")); got != 1 {
		t.Fatalf("unit state = %v, want 1", got)
	}
}
