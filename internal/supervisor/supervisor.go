// Package supervisor owns the unit descriptors and runs the daily cycle:
// plan the day, reconcile desired against observed state every tick, and
// re-plan at local-midnight rollover. Everything else in this repository
// is a collaborator of this loop.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/svcm/internal/calendar"
	"github.com/loykin/svcm/internal/config"
	"github.com/loykin/svcm/internal/dateutil"
	"github.com/loykin/svcm/internal/dust"
	"github.com/loykin/svcm/internal/history"
	"github.com/loykin/svcm/internal/history/factory"
	"github.com/loykin/svcm/internal/logger"
	"github.com/loykin/svcm/internal/metrics"
	"github.com/loykin/svcm/internal/sysd"
	"github.com/loykin/svcm/internal/unit"
)

const (
	// DefaultTickInterval is the pause between reconciliation passes.
	DefaultTickInterval = 30 * time.Second
	// DefaultSettleDelay is the worst-case settling window between
	// transitions of a restart sequence. Not a readiness poll.
	DefaultSettleDelay = 10 * time.Second
	// DefaultMaxToggleDepth bounds dependency recursion so a config typo
	// cannot cycle forever.
	DefaultMaxToggleDepth = 8
	// defaultBackoffUnit is multiplied by the attempt number between
	// oracle retries.
	defaultBackoffUnit = time.Second
)

// Options configure a Supervisor. Zero values fall back to production
// defaults; tests inject a scripted driver, a fake clock and short delays.
type Options struct {
	ConfigPath  string
	Driver      sysd.Manager // nil: connect to systemd over D-Bus
	Log         *logger.Logger
	Now         func() time.Time
	Tick        time.Duration
	Settle      time.Duration
	BackoffUnit time.Duration
	MaxDepth    int
	CachePath   string
	Version     string
}

// Supervisor is constructed once at process entry. Prepare loads the
// configuration and collaborators, Block runs until Exit is called.
type Supervisor struct {
	cfg     *config.Config
	log     *logger.Logger
	slog    *slog.Logger
	driver  sysd.Manager
	dbus    *sysd.DBus // owned when the default driver is used
	oracle  *calendar.Client
	cache   calendar.Cache
	cleaner *dust.Cleaner
	hist    history.Sink

	cfgPath string
	units   []*unit.Unit
	byName  map[string]*unit.Unit

	workingDay bool
	lastDate   string

	now      func() time.Time
	tick     time.Duration
	settle   time.Duration
	backoff  time.Duration
	maxDepth int
	version  string

	quit     chan struct{}
	exitOnce sync.Once

	snapMu sync.RWMutex
	snap   Snapshot
}

// New builds a Supervisor from options; no I/O happens until Prepare.
func New(opts Options) *Supervisor {
	s := &Supervisor{
		driver:   opts.Driver,
		log:      opts.Log,
		now:      opts.Now,
		tick:     opts.Tick,
		settle:   opts.Settle,
		backoff:  opts.BackoffUnit,
		maxDepth: opts.MaxDepth,
		version:  opts.Version,
		quit:     make(chan struct{}),
	}
	s.cache = calendar.Cache{Path: opts.CachePath}
	if s.cache.Path == "" {
		s.cache.Path = calendar.DefaultCachePath
	}
	s.cfgPath = opts.ConfigPath
	if s.cfgPath == "" {
		s.cfgPath = config.DefaultPath
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tick <= 0 {
		s.tick = DefaultTickInterval
	}
	if s.settle <= 0 {
		s.settle = DefaultSettleDelay
	}
	if s.backoff <= 0 {
		s.backoff = defaultBackoffUnit
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxToggleDepth
	}
	return s
}

// Prepare loads the configuration, opens the logger, connects the init
// driver and runs one synchronous janitor pass. Configuration errors are
// fatal and returned to the entry point.
func (s *Supervisor) Prepare() error {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if s.log == nil {
		lc := cfg.Log
		lc.Version = s.version
		l, err := logger.Open(lc)
		if err != nil {
			return err
		}
		s.log = l
	}
	s.slog = s.log.Slog()
	s.slog.Info("preparing service manager")

	if err := metrics.Register(nil); err != nil {
		s.slog.Warn("metrics registration failed", "error", err)
	}

	now := s.now()
	s.units = make([]*unit.Unit, 0, len(cfg.Units))
	s.byName = make(map[string]*unit.Unit, len(cfg.Units))
	for _, spec := range cfg.Units {
		u, err := unit.New(spec, now)
		if err != nil {
			s.slog.Error("invalid unit configuration", "error", err)
			return err
		}
		s.units = append(s.units, u)
		s.byName[u.Name] = u
	}
	for _, u := range s.units {
		for _, d := range u.Dependents {
			if _, ok := s.byName[d]; !ok {
				s.slog.Warn("dependent does not resolve to a configured unit",
					"unit", u.Name, "dependent", d)
			}
		}
	}

	if s.driver == nil {
		conn, err := sysd.NewDBus(context.Background())
		if err != nil {
			s.slog.Error("unable to reach the init system", "error", err)
			return err
		}
		s.dbus = conn
		s.driver = conn
	}

	if cfg.HTTP != nil {
		s.oracle = calendar.NewClient(cfg.HTTP.Server, cfg.HTTP.Port)
	}

	if cfg.History != nil && cfg.History.DSN != "" {
		sink, err := factory.NewSinkFromDSN(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		s.hist = sink
	}

	s.cleaner = dust.New(cfg.Dust)
	if !s.cleaner.IsEmpty() {
		s.cleaner.Clean(s.slog)
	}
	return nil
}

// Block runs the daily cycle until Exit. It returns an error only when
// the very first calendar resolution fails with no usable cache.
func (s *Supervisor) Block() error {
	s.lastDate = dateutil.Current(s.now())

	if s.oracle != nil {
		if err := s.resolveWorkingDate(); err != nil {
			s.slog.Error("failed to load day status", "date", s.lastDate, "error", err)
			return err
		}
	} else {
		s.workingDay = true
	}
	metrics.SetWorkingDay(s.workingDay)

	s.seedUnits()
	s.publishSnapshot()

	s.slog.Info("starting service manager",
		"tick", s.tick.String(), "units", len(s.units))

	for !s.cancelled() {
		now := s.now()
		finished := true
		for _, u := range s.units {
			if !s.reconcile(u, now) {
				finished = false
				break
			}
		}
		metrics.IncTick()
		s.publishSnapshot()
		if !finished || !s.waitFor(s.tick) {
			break
		}
		s.switchToNewDay()
	}

	s.slog.Info("supervision loop exited")
	return nil
}

// Exit requests cooperative cancellation: any in-progress wait returns
// immediately and Block unwinds. Safe to call from the signal path and
// more than once.
func (s *Supervisor) Exit() {
	s.exitOnce.Do(func() {
		if s.slog != nil {
			s.slog.Info("service manager exiting")
		}
		close(s.quit)
	})
}

// Close releases collaborators; call after Block returns.
func (s *Supervisor) Close() {
	if s.hist != nil {
		_ = s.hist.Close()
	}
	if s.dbus != nil {
		s.dbus.Close()
	}
	if s.log != nil {
		_ = s.log.Close()
	}
}

// Config exposes the loaded configuration (after Prepare) so the entry
// point can wire optional collaborators such as the admin server.
func (s *Supervisor) Config() *config.Config { return s.cfg }

// waitFor sleeps up to d. It returns false when cancellation arrived
// first; callers break out of whatever sequence they were in.
func (s *Supervisor) waitFor(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.quit:
		return false
	case <-t.C:
		return true
	}
}

func (s *Supervisor) cancelled() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// seedUnits queries live state for every descriptor and records it as the
// observed state. Runs at Block entry and after every rollover.
func (s *Supervisor) seedUnits() {
	for _, u := range s.units {
		s.slog.Debug("preparing unit", "unit", u.Name)
		u.Range.LogTo(s.slog)
		u.State = s.liveStatus(u)
		metrics.SetUnitActive(u.Name, u.State == unit.StatusActive)
		s.slog.Debug("unit status seeded", "unit", u.Name, "state", u.State.String())
	}
}
