// Package postgres writes transition history to PostgreSQL via the pgx
// stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/svcm/internal/history"
)

type Sink struct {
	db *sql.DB
}

// New connects with a postgres:// DSN and ensures the schema.
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty PostgreSQL DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &Sink{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS unit_history(
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		unit TEXT NOT NULL,
		action TEXT NOT NULL,
		ok BOOLEAN NOT NULL,
		error TEXT
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	var errStr sql.NullString
	if e.Err != "" {
		errStr = sql.NullString{String: e.Err, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unit_history(occurred_at, unit, action, ok, error)
		VALUES($1, $2, $3, $4, $5);`,
		e.OccurredAt.UTC(), e.Unit, string(e.Action), e.OK, errStr)
	return err
}

func (s *Sink) Close() error { return s.db.Close() }
