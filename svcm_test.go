package svcm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"http": {"server": "oracle.internal", "port": 8080},
		"svc": [
			{"name": "alpha", "start": "09:00:00", "end": "18:00:00", "dependent": ["beta"]},
			{"name": "beta.service"}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(cfg.Units))
	}
	if cfg.Units[0].Name != "alpha.service" {
		t.Fatalf("name not normalized: %q", cfg.Units[0].Name)
	}
	if cfg.Units[0].Dependents[0] != "beta.service" {
		t.Fatalf("dependent not normalized: %q", cfg.Units[0].Dependents[0])
	}
}

func TestPrepareFailsWithoutConfig(t *testing.T) {
	sup := New(filepath.Join(t.TempDir(), "missing.json"))
	if err := sup.Prepare(); err == nil {
		t.Fatalf("expected error for missing configuration")
	}
}

func TestRegisterMetrics(t *testing.T) {
	if err := RegisterMetrics(nil); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}
	if MetricsHandler() == nil {
		t.Fatalf("nil metrics handler")
	}
}
