package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `{
		"http": {"server": "cal.example.com", "port": 8080},
		"listen": "127.0.0.1:9321",
		"history": {"dsn": "./svcm/history.db"},
		"svc": [
			{"name": "market-data", "start": "09:00:00", "end": "17:00:00",
			 "restart": "12:00:00", "required_workday": true,
			 "dependent": ["feed-gw", "order-router.service"]},
			{"name": "housekeeper.timer", "start": "", "end": "", "required_workday": false}
		],
		"dust": {
			"logs":  {"dir": "/var/log/app", "ext": [".log"], "delete_empty_dir": true},
			"cache": {"dir": "/var/lib/app", "ext": [".dat"], "is_cache": true}
		}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.HTTP)
	require.Equal(t, "cal.example.com", cfg.HTTP.Server)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, "127.0.0.1:9321", cfg.Listen)
	require.NotNil(t, cfg.History)
	require.Equal(t, "./svcm/history.db", cfg.History.DSN)
	require.Len(t, cfg.Units, 2)
	u := cfg.Units[0]
	require.Equal(t, "market-data.service", u.Name)
	require.Equal(t, []string{"feed-gw.service", "order-router.service"}, u.Dependents)
	require.Equal(t, "housekeeper.timer", cfg.Units[1].Name, "existing extension must be kept")
	// Dust entries sorted by key: cache before logs.
	require.Len(t, cfg.Dust, 2)
	require.True(t, cfg.Dust[0].IsCache)
	require.Equal(t, "/var/log/app", cfg.Dust[1].Dir)
}

func TestLoadMinimalWithoutOracle(t *testing.T) {
	path := writeConfig(t, `{
		"svc": [{"name": "worker", "start": "", "end": "", "required_workday": false}]
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP != nil {
		t.Fatalf("http section should be absent")
	}
	if len(cfg.Dust) != 0 {
		t.Fatalf("dust should be empty")
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing file", ""},
		{"bad json", `{not json`},
		{"no svc", `{"http": {"server": "h", "port": 80}}`},
		{"missing server", `{"http": {"port": 80}, "svc": [{"name": "a"}]}`},
		{"port zero", `{"http": {"server": "h", "port": 0}, "svc": [{"name": "a"}]}`},
		{"port 443", `{"http": {"server": "h", "port": 443}, "svc": [{"name": "a"}]}`},
		{"port 65535", `{"http": {"server": "h", "port": 65535}, "svc": [{"name": "a"}]}`},
		{"nameless unit", `{"svc": [{"start": "09:00:00", "end": "17:00:00"}]}`},
		{"duplicate unit", `{"svc": [{"name": "a"}, {"name": "a.service"}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var path string
			if c.data == "" {
				path = filepath.Join(t.TempDir(), "missing.json")
			} else {
				path = writeConfig(t, c.data)
			}
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestDustDirDefaultsToCwd(t *testing.T) {
	path := writeConfig(t, `{
		"svc": [{"name": "a"}],
		"dust": {"tmp": {"ext": [".tmp"]}}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	wd, _ := os.Getwd()
	if len(cfg.Dust) != 1 || cfg.Dust[0].Dir != wd {
		t.Fatalf("empty dir should default to cwd, got %+v", cfg.Dust)
	}
}
