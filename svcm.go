// Package svcm supervises systemd units on a daily schedule: operational
// windows, once-per-day restarts with dependency handling, working-day
// gating against a trading-calendar oracle, log renewal and a filesystem
// janitor at day rollover.
package svcm

import (
	"net/http"

	"github.com/loykin/svcm/internal/config"
	"github.com/loykin/svcm/internal/history"
	"github.com/loykin/svcm/internal/metrics"
	iapi "github.com/loykin/svcm/internal/server"
	"github.com/loykin/svcm/internal/supervisor"
	"github.com/loykin/svcm/internal/unit"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = unit.Spec

type Status = unit.Status

type Config = config.Config

type Snapshot = supervisor.Snapshot

type UnitSnapshot = supervisor.UnitSnapshot

type HistorySink = history.Sink

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.
type Supervisor struct{ inner *supervisor.Supervisor }

// New builds a supervisor reading its configuration from configPath.
func New(configPath string) *Supervisor {
	return &Supervisor{inner: supervisor.New(supervisor.Options{
		ConfigPath: configPath,
		Version:    Version,
	})}
}

func (s *Supervisor) Prepare() error     { return s.inner.Prepare() }
func (s *Supervisor) Block() error       { return s.inner.Block() }
func (s *Supervisor) Exit()              { s.inner.Exit() }
func (s *Supervisor) Close()             { s.inner.Close() }
func (s *Supervisor) Snapshot() Snapshot { return s.inner.Snapshot() }
func (s *Supervisor) Config() *Config    { return s.inner.Config() }

// LoadConfig parses and validates a configuration file.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// RegisterMetrics registers the supervisor's collectors on reg (pass nil
// for the default registry).
func RegisterMetrics(reg prometheus.Registerer) error { return metrics.Register(reg) }

// MetricsHandler exposes the Prometheus metrics endpoint.
func MetricsHandler() http.Handler { return metrics.Handler() }

// AdminHandler returns the read-only HTTP surface for sup, mountable in
// any mux.
func AdminHandler(sup *Supervisor) http.Handler {
	return iapi.NewRouter(sup.inner).Handler()
}
