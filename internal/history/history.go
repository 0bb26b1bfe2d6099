// Package history exports unit transition events to external systems so a
// day of supervisor decisions can be audited after the fact.
package history

import (
	"context"
	"time"
)

// Action is the transition the supervisor attempted.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// Event is one attempted transition. Err is empty when the init system
// accepted the call.
type Event struct {
	Unit       string    `json:"unit"`
	Action     Action    `json:"action"`
	OK         bool      `json:"ok"`
	Err        string    `json:"err,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is a destination for transition events. Implementations must be
// safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
