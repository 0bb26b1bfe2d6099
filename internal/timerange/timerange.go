// Package timerange anchors HH:MM:SS schedule strings to concrete instants
// of the current day and answers the two questions the supervision loop
// asks every tick: is a unit inside its operational window, and is it time
// for its once-per-day restart.
package timerange

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// emptyTime is treated the same as an absent value.
const emptyTime = "00:00:00"

// restartWindow absorbs tick jitter so a restart fires exactly once per day.
const restartWindow = 60 * time.Second

var errMidnightSpan = errors.New("end time precedes start time (windows may not span midnight)")

// Range holds the schedule strings of one unit and their epoch anchors for
// the current day. Prepare must be called again after every day rollover;
// a zero epoch means the component is unset.
type Range struct {
	startTime   string
	endTime     string
	restartTime string

	startEpoch   int64
	endEpoch     int64
	restartEpoch int64
}

// New parses the three schedule strings and anchors them to the day of now.
// Blank strings and "00:00:00" disable the corresponding component. A window
// whose end precedes its start is rejected.
func New(start, end, restart string, now time.Time) (*Range, error) {
	r := &Range{startTime: start, endTime: end, restartTime: restart}
	if err := r.validate(); err != nil {
		return nil, err
	}
	r.Prepare(now)
	if r.startEpoch != 0 && r.endEpoch < r.startEpoch {
		return nil, errMidnightSpan
	}
	return r, nil
}

func (r *Range) validate() error {
	for _, s := range []string{r.startTime, r.endTime, r.restartTime} {
		if unsetTime(s) {
			continue
		}
		if _, err := time.Parse("15:04:05", s); err != nil {
			return fmt.Errorf("invalid time %q: %w", s, err)
		}
	}
	set := func(s string) bool { return !unsetTime(s) }
	if set(r.startTime) != set(r.endTime) {
		return errors.New("start and end times must be set together")
	}
	return nil
}

func unsetTime(s string) bool { return s == "" || s == emptyTime }

// Prepare re-anchors the parsed wall-clock times to the day of now in the
// local time zone. Strings were validated at construction, so parse errors
// cannot occur here.
func (r *Range) Prepare(now time.Time) {
	if unsetTime(r.restartTime) {
		r.restartEpoch = 0
	} else {
		r.restartEpoch = anchor(r.restartTime, now)
	}
	if unsetTime(r.startTime) || unsetTime(r.endTime) {
		r.startEpoch = 0
		r.endEpoch = 0
		return
	}
	r.startEpoch = anchor(r.startTime, now)
	r.endEpoch = anchor(r.endTime, now)
}

// anchor combines an HH:MM:SS string with the date of now in local time.
func anchor(s string, now time.Time) int64 {
	parsed, _ := time.Parse("15:04:05", s)
	local := now.Local()
	return time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.Local).Unix()
}

// IsBetween reports whether now falls inside the operational window.
// An unset window is always open; bounds are inclusive.
func (r *Range) IsBetween(now time.Time) bool {
	if r.startEpoch == 0 || r.endEpoch == 0 {
		return true
	}
	n := now.Unix()
	return n >= r.startEpoch && n <= r.endEpoch
}

// NeedRestart reports whether now is within the daily restart acceptance
// window [restart, restart+60s].
func (r *Range) NeedRestart(now time.Time) bool {
	if r.restartEpoch == 0 {
		return false
	}
	n := now.Unix()
	return n >= r.restartEpoch && n <= r.restartEpoch+int64(restartWindow/time.Second)
}

// RestartSupported reports whether a daily restart instant is configured.
func (r *Range) RestartSupported() bool { return r.restartEpoch > 0 }

// StartEpoch returns the anchored window start (0 when unset).
func (r *Range) StartEpoch() int64 { return r.startEpoch }

// EndEpoch returns the anchored window end (0 when unset).
func (r *Range) EndEpoch() int64 { return r.endEpoch }

// RestartEpoch returns the anchored restart instant (0 when unset).
func (r *Range) RestartEpoch() int64 { return r.restartEpoch }

// LogTo writes the anchored schedule at debug level.
func (r *Range) LogTo(log *slog.Logger) {
	if r.startEpoch == 0 || r.endEpoch == 0 {
		log.Debug("unit runs in uninterrupted mode")
	} else {
		log.Debug("scheduled window",
			"start", time.Unix(r.startEpoch, 0).Format(time.ANSIC),
			"end", time.Unix(r.endEpoch, 0).Format(time.ANSIC))
	}
	if r.restartEpoch > 0 {
		log.Debug("scheduled restart",
			"at", time.Unix(r.restartEpoch, 0).Format(time.ANSIC))
	}
}
