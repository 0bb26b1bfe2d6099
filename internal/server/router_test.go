package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loykin/svcm/internal/supervisor"
)

type staticSource struct {
	snap supervisor.Snapshot
}

func (s staticSource) Snapshot() supervisor.Snapshot { return s.snap }

func TestStatusEndpoint(t *testing.T) {
	src := staticSource{snap: supervisor.Snapshot{
		Date:       "2026-08-26",
		WorkingDay: true,
		Units: []supervisor.UnitSnapshot{
			{Name: "a.service", State: "active"},
		},
	}}
	srv := httptest.NewServer(NewRouter(src).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got supervisor.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Date != "2026-08-26" || !got.WorkingDay {
		t.Fatalf("snapshot = %+v", got)
	}
	if len(got.Units) != 1 || got.Units[0].Name != "a.service" {
		t.Fatalf("units = %+v", got.Units)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := httptest.NewServer(NewRouter(staticSource{}).Handler())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}
