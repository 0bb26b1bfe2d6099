// Package config loads and validates ./svcm/config.json.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/viper"

	"github.com/loykin/svcm/internal/dust"
	"github.com/loykin/svcm/internal/logger"
	"github.com/loykin/svcm/internal/sysd"
	"github.com/loykin/svcm/internal/unit"
)

// DefaultPath is where the supervisor looks for its configuration.
const DefaultPath = "./svcm/config.json"

const maxPort = 0xFFFF

// HTTPConfig points at the calendar oracle. When the section is absent the
// supervisor runs without a calendar and treats every day as a working day.
type HTTPConfig struct {
	Server string `mapstructure:"server"`
	Port   int    `mapstructure:"port"`
}

// HistoryConfig selects the transition history sink by DSN. Empty means
// history is disabled.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Config is the parsed configuration. Units keep their declaration order;
// janitor entries are ordered by key for determinism.
type Config struct {
	HTTP    *HTTPConfig
	Listen  string
	History *HistoryConfig
	Log     logger.Config
	Units   []unit.Spec
	Dust    []dust.Config
}

type fileConfig struct {
	HTTP    *HTTPConfig            `mapstructure:"http"`
	Listen  string                 `mapstructure:"listen"`
	History *HistoryConfig         `mapstructure:"history"`
	Log     *logger.Config         `mapstructure:"log"`
	Svc     []unit.Spec            `mapstructure:"svc"`
	Dust    map[string]dust.Config `mapstructure:"dust"`
}

// Load reads the JSON file at path. Unit and dependent names are
// normalized with the platform unit suffix; duplicate unit names and
// invalid oracle ports are load-time errors.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if len(fc.Svc) == 0 {
		return nil, fmt.Errorf("config %s: svc (array) is required", path)
	}
	if fc.HTTP != nil {
		if fc.HTTP.Server == "" {
			return nil, fmt.Errorf("config %s: http.server (string) is required", path)
		}
		if err := validatePort(fc.HTTP.Port); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTP:    fc.HTTP,
		Listen:  fc.Listen,
		History: fc.History,
		Units:   fc.Svc,
	}
	if fc.Log != nil {
		cfg.Log = *fc.Log
	}

	seen := make(map[string]struct{}, len(cfg.Units))
	for i := range cfg.Units {
		u := &cfg.Units[i]
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		u.Name = sysd.NormalizeName(u.Name)
		if _, dup := seen[u.Name]; dup {
			return nil, fmt.Errorf("config %s: duplicate unit %q", path, u.Name)
		}
		seen[u.Name] = struct{}{}
		for j, d := range u.Dependents {
			u.Dependents[j] = sysd.NormalizeName(d)
		}
	}

	cfg.Dust = dustConfigs(fc.Dust)
	return cfg, nil
}

// validatePort rejects out-of-range ports and the TLS port; HTTPS is not
// supported by the oracle client.
func validatePort(port int) error {
	if port <= 0 || port >= maxPort {
		return fmt.Errorf("http.port %d out of range (1..65534)", port)
	}
	if port == 443 {
		return fmt.Errorf("http.port 443 not supported (no TLS)")
	}
	return nil
}

// dustConfigs flattens the object-of-objects dust section, sorted by key.
// An empty dir means the working directory at load time.
func dustConfigs(entries map[string]dust.Config) []dust.Config {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]dust.Config, 0, len(keys))
	for _, k := range keys {
		c := entries[k]
		if c.Dir == "" {
			if wd, err := os.Getwd(); err == nil {
				c.Dir = wd
			}
		}
		out = append(out, c)
	}
	return out
}
