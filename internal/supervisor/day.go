package supervisor

import (
	"time"

	"github.com/loykin/svcm/internal/calendar"
	"github.com/loykin/svcm/internal/dateutil"
	"github.com/loykin/svcm/internal/metrics"
	"github.com/loykin/svcm/internal/unit"
)

// resolveWorkingDate fetches the next working date from the oracle, falling
// back to the same-day disk cache when every attempt fails. The working-day
// flag is true exactly when the fetched date equals today. An error means
// neither source produced an answer.
func (s *Supervisor) resolveWorkingDate() error {
	today := s.lastDate

	date, ok := s.fetchWithRetry()
	if ok {
		if err := s.cache.Save(today, date); err != nil {
			s.slog.Warn("unable to persist calendar cache", "path", s.cache.Path, "error", err)
		}
	} else {
		cached, err := s.cache.Load(today)
		if err != nil {
			return err
		}
		s.slog.Info("calendar oracle unreachable; using cached trade date",
			"path", s.cache.Path, "date", cached)
		date = cached
	}

	s.workingDay = date == today
	metrics.SetWorkingDay(s.workingDay)
	s.slog.Info("day status loaded",
		"date", today, "trade_date", date, "working_day", s.workingDay)
	return nil
}

// fetchWithRetry makes up to calendar.MaxRetries attempts with a linearly
// growing pause between them. Cancellation aborts the sequence.
func (s *Supervisor) fetchWithRetry() (string, bool) {
	for i := 1; i <= calendar.MaxRetries; i++ {
		date, err := s.oracle.FetchWorkingDate()
		if err == nil {
			return date, true
		}
		s.slog.Warn("trade date fetch failed",
			"host", s.oracle.Host(), "attempt", i, "error", err)
		if i == calendar.MaxRetries || !s.waitFor(time.Duration(i)*s.backoff) {
			break
		}
	}
	return "", false
}

// switchToNewDay re-plans everything after a local-midnight rollover: renew
// the log file, refresh the working-day flag, sweep the janitor targets,
// re-anchor every schedule and clear the daily restart latches. Failures
// here are logged and survived; yesterday's working-day flag carries over.
func (s *Supervisor) switchToNewDay() {
	current := dateutil.Current(s.now())
	if current == s.lastDate {
		return
	}
	s.slog.Info("switching to a new day", "date", current)
	s.lastDate = current

	if err := s.log.Renew(); err != nil {
		s.slog.Error("log renewal failed", "error", err)
	}

	if s.oracle != nil {
		if err := s.resolveWorkingDate(); err != nil {
			s.slog.Error("failed to load day status; keeping previous working-day flag",
				"date", current, "error", err)
		}
	}

	if !s.cleaner.IsEmpty() {
		s.cleaner.Clean(s.slog)
	}

	now := s.now()
	for _, u := range s.units {
		u.Range.Prepare(now)
		u.RestartedToday = false
	}
	s.seedUnits()
	s.publishSnapshot()
}

// liveStatus asks the init system for the unit's current state. Query
// failures are logged and reported as inactive so the loop keeps making
// progress.
func (s *Supervisor) liveStatus(u *unit.Unit) unit.Status {
	raw, err := s.driver.Status(u.Name)
	if err != nil {
		s.slog.Error("failed to check unit status", "unit", u.Name, "error", err)
		return unit.StatusInactive
	}
	if raw != "active" {
		s.slog.Info("unit status", "unit", u.Name, "state", raw)
	}
	return unit.FromActiveState(raw)
}
