// Package logger provides the supervisor's file-backed log: one file per
// day under the log directory, mirrored to stdout, hard-capped in size,
// renewable at day rollover. An optional lumberjack-rotated archive keeps
// a compressed long-term copy beyond the dailies.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultDir is where daily log files are created.
	DefaultDir = "./svcm/log"
	// DefaultMaxSizeMB is the per-file hard cap. Writes past the cap are
	// dropped after a single marker line.
	DefaultMaxSizeMB = 40

	sizeMarker = "\nMAX_SIZE_EXCEEDED\n"
)

// ArchiveConfig enables a rotating long-term copy of everything written to
// the daily files. Parameters follow lumberjack semantics.
type ArchiveConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Config describes the log destination.
type Config struct {
	Dir       string         `mapstructure:"dir"`
	MaxSizeMB int            `mapstructure:"max_size_mb"`
	Level     string         `mapstructure:"level"`
	Archive   *ArchiveConfig `mapstructure:"archive"`
	Version   string         `mapstructure:"-"`
}

// Logger owns the daily file. It is safe for concurrent writes; the
// supervision loop and the signal path may both log.
type Logger struct {
	mu      sync.Mutex
	cfg     Config
	file    *os.File
	written int64
	marked  bool
	maxSize int64
	archive *lj.Logger
	stdout  io.Writer
	slogger *slog.Logger
	now     func() time.Time
}

// Open creates the log directory if needed and opens (or appends to)
// today's file, writing the intro banner when the file is fresh.
func Open(cfg Config) (*Logger, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}
	l := &Logger{
		cfg:     cfg,
		maxSize: int64(cfg.MaxSizeMB) << 20,
		stdout:  os.Stdout,
		now:     time.Now,
	}
	if a := cfg.Archive; a != nil && a.File != "" {
		l.archive = &lj.Logger{
			Filename:   a.File,
			MaxSize:    valOr(a.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(a.MaxBackups, 3),
			MaxAge:     valOr(a.MaxAgeDays, 7),
			Compress:   a.Compress,
		}
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	l.slogger = slog.New(newTabHandler(l, parseLevel(cfg.Level)))
	return l, nil
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog returns the structured logger bound to this file.
func (l *Logger) Slog() *slog.Logger { return l.slogger }

// Path returns the current daily file path.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

func (l *Logger) open() error {
	if err := os.MkdirAll(l.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(l.cfg.Dir, l.now().Format("2006_01_02")+".log")
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	l.written = 0
	l.marked = false
	if fresh {
		l.banner()
	}
	return nil
}

func (l *Logger) banner() {
	rule := strings.Repeat("-", 65) + "\n"
	version := l.cfg.Version
	if version == "" {
		version = "dev"
	}
	_, _ = l.write([]byte(rule))
	_, _ = l.write([]byte(fmt.Sprintf("This log generated at %s for Service Manager %s\n",
		l.now().Format("2006-01-02 15:04:05"), version)))
	_, _ = l.write([]byte(rule))
}

// Write mirrors p to stdout and the archive unconditionally, and to the
// daily file until the size cap is reached.
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(p)
}

func (l *Logger) write(p []byte) (int, error) {
	_, _ = l.stdout.Write(p)
	if l.archive != nil {
		_, _ = l.archive.Write(p)
	}
	if l.file == nil || l.written >= l.maxSize {
		return len(p), nil
	}
	l.written += int64(len(p))
	_, err := l.file.Write(p)
	if l.written >= l.maxSize && !l.marked {
		l.marked = true
		_, _ = l.file.WriteString(sizeMarker)
	}
	if err != nil {
		return len(p), err
	}
	return len(p), nil
}

// Renew closes the current file and opens today's, resetting the size
// counter. Called at day rollover.
func (l *Logger) Renew() error {
	l.slogger.Info("logger switching")
	l.mu.Lock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	err := l.open()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.slogger.Info("logger renewed")
	return nil
}

// Close flushes and closes the daily file and the archive.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.file != nil {
		err = l.file.Close()
		l.file = nil
	}
	if l.archive != nil {
		_ = l.archive.Close()
	}
	l.written = 0
	return err
}
