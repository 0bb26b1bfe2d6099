// Package clickhouse sends transition history to ClickHouse using the
// official Go client.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/loykin/svcm/internal/history"
)

type Sink struct {
	conn  driver.Conn
	table string
}

// New connects to addr (host:port, native protocol) and ensures table.
func New(addr, table string) (*Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
			Password: "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	s := &Sink{conn: conn, table: table}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		occurred_at DateTime,
		unit String,
		action String,
		ok UInt8,
		error String
	) ENGINE = MergeTree() ORDER BY (unit, occurred_at)`, s.table)
	return s.conn.Exec(ctx, stmt)
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	ok := uint8(0)
	if e.OK {
		ok = 1
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (occurred_at, unit, action, ok, error) VALUES (?, ?, ?, ?, ?)`, s.table)
	if err := s.conn.Exec(ctx, query, e.OccurredAt, e.Unit, string(e.Action), ok, e.Err); err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
