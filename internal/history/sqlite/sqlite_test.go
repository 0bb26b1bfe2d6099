package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/svcm/internal/history"
)

func TestSendAndQuery(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	events := []history.Event{
		{Unit: "a.service", Action: history.ActionStart, OK: true, OccurredAt: time.Now()},
		{Unit: "a.service", Action: history.ActionStop, OK: false, Err: "dbus timeout", OccurredAt: time.Now()},
	}
	for _, e := range events {
		if err := s.Send(ctx, e); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unit_history WHERE unit = ?`, "a.service").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
	var errStr string
	if err := s.db.QueryRowContext(ctx,
		`SELECT error FROM unit_history WHERE ok = 0`).Scan(&errStr); err != nil {
		t.Fatalf("query error row: %v", err)
	}
	if errStr != "dbus timeout" {
		t.Fatalf("unexpected error column %q", errStr)
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
