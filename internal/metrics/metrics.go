// Package metrics exposes Prometheus collectors for the supervision loop.
// Helpers no-op until Register has been called, so packages can record
// unconditionally.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	unitStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svcm",
			Subsystem: "unit",
			Name:      "starts_total",
			Help:      "Number of successful unit starts issued by the supervisor.",
		}, []string{"unit"},
	)
	unitStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svcm",
			Subsystem: "unit",
			Name:      "stops_total",
			Help:      "Number of successful unit stops issued by the supervisor.",
		}, []string{"unit"},
	)
	unitRestarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svcm",
			Subsystem: "unit",
			Name:      "restarts_total",
			Help:      "Number of successful daily restarts.",
		}, []string{"unit"},
	)
	transitionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "svcm",
			Subsystem: "unit",
			Name:      "transition_failures_total",
			Help:      "Number of failed init-system calls, by operation.",
		}, []string{"unit", "op"},
	)
	unitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "svcm",
			Subsystem: "unit",
			Name:      "active",
			Help:      "Supervisor's view of unit state (1 = active).",
		}, []string{"unit"},
	)
	ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "svcm",
			Subsystem: "loop",
			Name:      "ticks_total",
			Help:      "Number of completed reconciliation passes.",
		},
	)
	workingDay = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "svcm",
			Subsystem: "calendar",
			Name:      "working_day",
			Help:      "Whether today is a working day (1 = yes).",
		},
	)
)

// Register registers all collectors with r (nil means the default
// registry). Safe to call multiple times; AlreadyRegistered errors are
// ignored so the default registry can be shared.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{unitStarts, unitStops, unitRestarts, transitionFailures, unitState, ticks, workingDay}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the DefaultGatherer; the caller mounts the route.
func Handler() http.Handler { return promhttp.Handler() }

func IncStart(unit string) {
	if regOK.Load() {
		unitStarts.WithLabelValues(unit).Inc()
	}
}

func IncStop(unit string) {
	if regOK.Load() {
		unitStops.WithLabelValues(unit).Inc()
	}
}

func IncRestart(unit string) {
	if regOK.Load() {
		unitRestarts.WithLabelValues(unit).Inc()
	}
}

func IncFailure(unit, op string) {
	if regOK.Load() {
		transitionFailures.WithLabelValues(unit, op).Inc()
	}
}

func SetUnitActive(unit string, active bool) {
	if !regOK.Load() {
		return
	}
	v := 0.0
	if active {
		v = 1.0
	}
	unitState.WithLabelValues(unit).Set(v)
}

func IncTick() {
	if regOK.Load() {
		ticks.Inc()
	}
}

func SetWorkingDay(working bool) {
	if !regOK.Load() {
		return
	}
	v := 0.0
	if working {
		v = 1.0
	}
	workingDay.Set(v)
}
