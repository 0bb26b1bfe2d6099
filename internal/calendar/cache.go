package calendar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/svcm/internal/dateutil"
)

// DefaultCachePath is where the last fetched trade date is persisted.
const DefaultCachePath = "./svcm/cache.d"

// ErrCacheStale is returned when the cache exists but was written on a
// different day; stale entries must never decide today's working-day flag.
var ErrCacheStale = errors.New("calendar cache not written today")

// Cache persists the pair <fetched-on>~<next-working-date> so a restart or
// oracle outage on the same day can reuse the answer.
type Cache struct {
	Path string
}

// Load reads the cache and returns the next working date, provided the
// entry was written on today. Unparseable or stale contents are rejected.
func (c *Cache) Load(today string) (string, error) {
	b, err := os.ReadFile(c.Path)
	if err != nil {
		return "", err
	}
	fetchedOn, tradeDate, ok := strings.Cut(strings.TrimSpace(string(b)), "~")
	if !ok {
		return "", fmt.Errorf("invalid cache data %q in %s", string(b), c.Path)
	}
	if !dateutil.Valid(fetchedOn) || !dateutil.Valid(tradeDate) {
		return "", fmt.Errorf("invalid cache dates %q in %s", string(b), c.Path)
	}
	if fetchedOn != today {
		return "", ErrCacheStale
	}
	return tradeDate, nil
}

// Save writes the pair atomically (write temp, then rename).
func (c *Cache) Save(today, tradeDate string) error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "cache-*.tmp")
	if err != nil {
		return err
	}
	if _, err = tmp.WriteString(today + "~" + tradeDate); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.Path)
}
