package supervisor

import (
	"context"
	"time"

	"github.com/loykin/svcm/internal/history"
	"github.com/loykin/svcm/internal/metrics"
	"github.com/loykin/svcm/internal/unit"
)

// reconcile drives one unit toward its desired state for this instant.
// Precedence: working-day gate, then the daily restart, then the window.
// It returns false when cancellation interrupted a settle wait, which
// unwinds the whole tick.
func (s *Supervisor) reconcile(u *unit.Unit, now time.Time) bool {
	if u.RequiredWorkday && !s.workingDay {
		if u.State == unit.StatusActive {
			if s.liveStatus(u) != unit.StatusActive {
				s.slog.Info("initiating force close", "unit", u.Name)
			}
			s.stopUnit(u)
		}
		return true
	}

	if u.Range.RestartSupported() && !u.RestartedToday && u.Range.NeedRestart(now) {
		return s.runRestart(u, now)
	}

	if u.Range.IsBetween(now) {
		if s.liveStatus(u) == unit.StatusInactive {
			s.slog.Info("unit inactive inside its window", "unit", u.Name)
			s.startUnit(u)
		}
		return true
	}

	if u.State == unit.StatusActive {
		if s.liveStatus(u) != unit.StatusActive {
			s.slog.Info("initiating force close", "unit", u.Name)
		}
		s.stopUnit(u)
	}
	return true
}

// runRestart performs the once-per-day restart sequence: stop the dependent
// subtree, restart the unit, then bring the subtree back up, with a settle
// wait between each phase that changed anything. RestartedToday latches as
// soon as the restart is issued so a cancelled sequence does not repeat
// tomorrow's work today.
func (s *Supervisor) runRestart(u *unit.Unit, now time.Time) bool {
	s.slog.Info("daily restart due", "unit", u.Name)

	if u.HasDependents() && s.toggleDependents(u, now, stopDirection, 0) > 0 {
		if !s.waitFor(s.settle) {
			return false
		}
	}

	s.restartUnit(u)
	u.RestartedToday = true
	if !s.waitFor(s.settle) {
		return false
	}

	if u.HasDependents() && s.toggleDependents(u, now, startDirection, 0) > 0 {
		if !s.waitFor(s.settle) {
			return false
		}
	}
	return true
}

const (
	stopDirection  = true
	startDirection = false
)

// toggleDependents walks the dependency list of parent and either stops the
// subtree (children before parents) or starts it (parents before children).
// Units touched here count as restarted for the day. The return value is
// the number of transitions issued at this level, so callers know whether a
// settle wait is warranted. Recursion is depth-capped; unknown names are
// logged and skipped.
func (s *Supervisor) toggleDependents(parent *unit.Unit, now time.Time, stop bool, depth int) int {
	if depth >= s.maxDepth {
		s.slog.Error("dependency chain too deep; refusing to recurse",
			"unit", parent.Name, "depth", depth)
		return 0
	}
	s.slog.Info("iterating dependents", "unit", parent.Name, "stop", stop)

	count := 0
	for _, name := range parent.Dependents {
		if s.cancelled() {
			break
		}
		d, ok := s.byName[name]
		if !ok {
			s.slog.Info("dependent not found", "unit", name)
			continue
		}

		if stop {
			if s.liveStatus(d) == unit.StatusInactive {
				continue
			}
			if d.HasDependents() && s.toggleDependents(d, now, stop, depth+1) > 0 {
				if !s.waitFor(s.settle) {
					break
				}
			}
			s.stopUnit(d)
			d.RestartedToday = true
			count++
			continue
		}

		if s.liveStatus(d) != unit.StatusInactive || !d.Range.IsBetween(now) {
			continue
		}
		s.startUnit(d)
		d.RestartedToday = true
		count++
		if d.HasDependents() && s.toggleDependents(d, now, stop, depth+1) > 0 {
			if !s.waitFor(s.settle) {
				break
			}
		}
	}
	return count
}

// startUnit issues a start job. Observed state changes only when the init
// system accepted the job.
func (s *Supervisor) startUnit(u *unit.Unit) {
	s.slog.Info("starting unit", "unit", u.Name)
	err := s.driver.Start(u.Name)
	if err != nil {
		s.slog.Error("failed to start unit", "unit", u.Name, "error", err)
		metrics.IncFailure(u.Name, "start")
	} else {
		u.State = unit.StatusActive
		metrics.IncStart(u.Name)
		metrics.SetUnitActive(u.Name, true)
	}
	s.record(u.Name, history.ActionStart, err)
}

// stopUnit issues a stop job.
func (s *Supervisor) stopUnit(u *unit.Unit) {
	s.slog.Info("stopping unit", "unit", u.Name)
	err := s.driver.Stop(u.Name)
	if err != nil {
		s.slog.Error("failed to stop unit", "unit", u.Name, "error", err)
		metrics.IncFailure(u.Name, "stop")
	} else {
		u.State = unit.StatusInactive
		metrics.IncStop(u.Name)
		metrics.SetUnitActive(u.Name, false)
	}
	s.record(u.Name, history.ActionStop, err)
}

// restartUnit issues a restart job. A restarted unit is active on success.
func (s *Supervisor) restartUnit(u *unit.Unit) {
	s.slog.Info("restarting unit", "unit", u.Name)
	err := s.driver.Restart(u.Name)
	if err != nil {
		s.slog.Error("failed to restart unit", "unit", u.Name, "error", err)
		metrics.IncFailure(u.Name, "restart")
	} else {
		u.State = unit.StatusActive
		metrics.IncRestart(u.Name)
		metrics.SetUnitActive(u.Name, true)
	}
	s.record(u.Name, history.ActionRestart, err)
}

// record forwards the transition outcome to the history sink, when one is
// configured. Sink trouble never disturbs supervision.
func (s *Supervisor) record(name string, action history.Action, opErr error) {
	if s.hist == nil {
		return
	}
	e := history.Event{
		Unit:       name,
		Action:     action,
		OK:         opErr == nil,
		OccurredAt: s.now(),
	}
	if opErr != nil {
		e.Err = opErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.hist.Send(ctx, e); err != nil {
		s.slog.Warn("history sink rejected event", "unit", name, "error", err)
	}
}
