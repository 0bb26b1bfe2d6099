package sysd

import (
	"context"
	"fmt"

	sd "github.com/coreos/go-systemd/v22/dbus"
)

// jobMode "replace" queues the new job and replaces any conflicting
// pending job, matching systemctl's default.
const jobMode = "replace"

// DBus implements Manager against org.freedesktop.systemd1 on the system
// bus. The connection is established once and held for the process
// lifetime; it is used by a single goroutine (the supervision loop).
type DBus struct {
	conn *sd.Conn
}

// NewDBus connects to the system bus.
func NewDBus(ctx context.Context) (*DBus, error) {
	conn, err := sd.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	return &DBus{conn: conn}, nil
}

// Close releases the bus connection.
func (d *DBus) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}

// Start enqueues a StartUnit job. The call returns once systemd accepts
// the job; settling is the caller's concern.
func (d *DBus) Start(name string) error {
	if _, err := d.conn.StartUnitContext(context.Background(), name, jobMode, nil); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

// Stop enqueues a StopUnit job.
func (d *DBus) Stop(name string) error {
	if _, err := d.conn.StopUnitContext(context.Background(), name, jobMode, nil); err != nil {
		return fmt.Errorf("stop %s: %w", name, err)
	}
	return nil
}

// Restart enqueues a RestartUnit job.
func (d *DBus) Restart(name string) error {
	if _, err := d.conn.RestartUnitContext(context.Background(), name, jobMode, nil); err != nil {
		return fmt.Errorf("restart %s: %w", name, err)
	}
	return nil
}

// Status returns the unit's ActiveState property. Units that were never
// started are loaded on demand, so unknown names report "inactive" rather
// than an error from GetUnit.
func (d *DBus) Status(name string) (string, error) {
	prop, err := d.conn.GetUnitPropertyContext(context.Background(), name, "ActiveState")
	if err != nil {
		return "", fmt.Errorf("status %s: %w", name, err)
	}
	state, ok := prop.Value.Value().(string)
	if !ok || state == "" {
		return "inactive", nil
	}
	return state, nil
}
