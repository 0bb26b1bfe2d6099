// Package sysd drives the host init system. The Manager interface is the
// only seam the supervisor needs: tests substitute a scripted double, the
// real implementation talks to systemd over its D-Bus API.
package sysd

import "strings"

// UnitSuffix is appended to unit names that carry no extension.
const UnitSuffix = ".service"

// Manager is the capability set the supervision loop requires from the
// init system. Status returns the raw ActiveState string (one of active,
// reloading, inactive, failed, activating, deactivating, maintenance).
type Manager interface {
	Start(name string) error
	Stop(name string) error
	Restart(name string) error
	Status(name string) (string, error)
}

// NormalizeName appends the platform unit suffix when the name carries no
// extension. "redis" becomes "redis.service", "app.timer" is left alone.
func NormalizeName(name string) string {
	if !strings.Contains(name, ".") {
		return name + UnitSuffix
	}
	return name
}
