// Package sqlite is the default transition history sink (modernc.org
// driver, CGO-free). The DSN is a filesystem path; ":memory:" works for
// tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/svcm/internal/history"
)

type Sink struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Sink, error) {
	p := strings.TrimSpace(strings.TrimPrefix(path, "sqlite://"))
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = db.Exec("PRAGMA busy_timeout=3000;")
	s := &Sink{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS unit_history(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			occurred_at TIMESTAMP NOT NULL,
			unit TEXT NOT NULL,
			action TEXT NOT NULL,
			ok BOOLEAN NOT NULL,
			error TEXT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_unit_history_unit ON unit_history(unit);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	var errStr sql.NullString
	if e.Err != "" {
		errStr = sql.NullString{String: e.Err, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unit_history(occurred_at, unit, action, ok, error)
		VALUES(?, ?, ?, ?, ?);`,
		e.OccurredAt.UTC(), e.Unit, string(e.Action), e.OK, errStr)
	return err
}

func (s *Sink) Close() error { return s.db.Close() }
