package supervisor

// UnitSnapshot is the externally visible state of one unit at the end of a
// reconciliation pass.
type UnitSnapshot struct {
	Name           string `json:"name"`
	State          string `json:"state"`
	RestartedToday bool   `json:"restarted_today"`
	WindowStart    int64  `json:"window_start,omitempty"`
	WindowEnd      int64  `json:"window_end,omitempty"`
	RestartAt      int64  `json:"restart_at,omitempty"`
}

// Snapshot is a point-in-time copy of the supervisor's view of the day,
// safe to read while the loop keeps running.
type Snapshot struct {
	Date       string         `json:"date"`
	WorkingDay bool           `json:"working_day"`
	Units      []UnitSnapshot `json:"units"`
}

// publishSnapshot is called by the loop after it mutated unit state.
func (s *Supervisor) publishSnapshot() {
	snap := Snapshot{
		Date:       s.lastDate,
		WorkingDay: s.workingDay,
		Units:      make([]UnitSnapshot, 0, len(s.units)),
	}
	for _, u := range s.units {
		snap.Units = append(snap.Units, UnitSnapshot{
			Name:           u.Name,
			State:          u.State.String(),
			RestartedToday: u.RestartedToday,
			WindowStart:    u.Range.StartEpoch(),
			WindowEnd:      u.Range.EndEpoch(),
			RestartAt:      u.Range.RestartEpoch(),
		})
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

// Snapshot returns the most recently published view.
func (s *Supervisor) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}
