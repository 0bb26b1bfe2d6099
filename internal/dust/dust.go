// Package dust is the filesystem janitor: it deletes aged files matched by
// extension under configured roots and prunes directories that became
// empty. It runs once at startup and once per day rollover.
package dust

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// maxAge is how old a file's last write must be before it is deletable.
const maxAge = 120 * time.Hour // 5 days

// cacheKey restricts is_cache sweeps to paths under a cache directory.
const cacheKey = "/cache/"

// Config describes one janitor root. Dir defaults to the working directory
// at load time; Extensions carry their leading dot.
type Config struct {
	Dir             string   `mapstructure:"dir"`
	IsCache         bool     `mapstructure:"is_cache"`
	DeleteEmptyDirs bool     `mapstructure:"delete_empty_dir"`
	Extensions      []string `mapstructure:"ext"`
}

// Cleaner sweeps a fixed set of roots. Individual file errors are logged
// and skipped; a sweep never fails as a whole.
type Cleaner struct {
	configs []Config
	now     func() time.Time
}

// New builds a Cleaner over configs.
func New(configs []Config) *Cleaner {
	return &Cleaner{configs: configs, now: time.Now}
}

// IsEmpty reports whether there is nothing to sweep.
func (c *Cleaner) IsEmpty() bool { return len(c.configs) == 0 }

// Clean runs one sweep over all configured roots.
func (c *Cleaner) Clean(log *slog.Logger) {
	log.Info("starting dust cleaner")
	for _, cfg := range c.configs {
		if len(cfg.Extensions) == 0 {
			continue
		}
		info, err := os.Stat(cfg.Dir)
		if err != nil || !info.IsDir() {
			log.Info("dust root not found", "dir", cfg.Dir)
			continue
		}
		c.sweepFiles(log, cfg)
		if cfg.DeleteEmptyDirs {
			c.pruneEmptyDirs(log, cfg.Dir)
		}
	}
	log.Info("dust cleaner finished")
}

func (c *Cleaner) sweepFiles(log *slog.Logger, cfg Config) {
	err := filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("dust walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if cfg.IsCache && !strings.Contains(filepath.ToSlash(path), cacheKey) {
			return nil
		}
		if !slices.Contains(cfg.Extensions, filepath.Ext(path)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if c.now().Sub(info.ModTime()) < maxAge {
			return nil
		}
		log.Info("deleting file", "path", path)
		if err := os.Remove(path); err != nil {
			log.Error("unable to delete file", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		log.Error("dust sweep failed", "dir", cfg.Dir, "error", err)
	}
}

// pruneEmptyDirs removes directories that are empty after the file sweep,
// deepest first so a chain of empties collapses in one pass.
func (c *Cleaner) pruneEmptyDirs(log *slog.Logger, root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(root, e.Name())
		c.pruneEmptyDirs(log, sub)
		remaining, err := os.ReadDir(sub)
		if err != nil || len(remaining) > 0 {
			continue
		}
		if err := os.Remove(sub); err == nil {
			log.Info("deleted empty directory", "path", sub)
		}
	}
}
