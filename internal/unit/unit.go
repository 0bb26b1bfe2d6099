// Package unit defines the declarative spec and runtime state of one
// supervised systemd unit.
package unit

import (
	"fmt"
	"time"

	"github.com/loykin/svcm/internal/timerange"
)

// Status is the supervisor's view of a unit. The init system reports a
// richer set of strings; everything collapses to active or inactive for
// decision making.
type Status int8

const (
	StatusInactive Status = iota
	StatusActive
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusError:
		return "error"
	default:
		return "inactive"
	}
}

// FromActiveState maps a systemd ActiveState string to a Status.
// Units that are activating count as active; everything else, including
// failed and unreachable units, counts as inactive so an in-window unit
// gets restarted on the next tick.
func FromActiveState(state string) Status {
	switch state {
	case "active", "activating":
		return StatusActive
	default:
		return StatusInactive
	}
}

// Spec is one entry of the svc array in the config file. Immutable after
// load.
type Spec struct {
	Name            string   `mapstructure:"name" json:"name"`
	Start           string   `mapstructure:"start" json:"start"`
	End             string   `mapstructure:"end" json:"end"`
	Restart         string   `mapstructure:"restart" json:"restart,omitempty"`
	RequiredWorkday bool     `mapstructure:"required_workday" json:"required_workday"`
	Dependents      []string `mapstructure:"dependent" json:"dependent,omitempty"`
}

// Validate checks the fields that must hold before a Unit can be built.
// Time strings are validated by timerange.New.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("unit requires a name")
	}
	for _, d := range s.Dependents {
		if d == "" {
			return fmt.Errorf("unit %q has an empty dependent name", s.Name)
		}
	}
	return nil
}

// Unit is the runtime descriptor owned by the supervision loop. State and
// RestartedToday are mutated only from that loop.
type Unit struct {
	Spec
	Range          *timerange.Range
	State          Status
	RestartedToday bool
}

// New builds a Unit from its spec, anchoring the schedule to the day of now.
func New(s Spec, now time.Time) (*Unit, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	r, err := timerange.New(s.Start, s.End, s.Restart, now)
	if err != nil {
		return nil, fmt.Errorf("unit %q: %w", s.Name, err)
	}
	return &Unit{Spec: s, Range: r}, nil
}

// HasDependents reports whether the unit carries a dependency list.
func (u *Unit) HasDependents() bool { return len(u.Dependents) > 0 }
