// Package calendar resolves the next working date from the trading
// calendar oracle, with a same-day disk cache as fallback.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/loykin/svcm/internal/dateutil"
)

// tradeDatePath is the fixed oracle endpoint.
const tradeDatePath = "/svc/trade-date"

// MaxRetries is how many fetch attempts the supervisor makes before
// falling back to the cache. Backoff between attempts is attempt*1s.
const MaxRetries = 10

var errEmptyBody = errors.New("oracle response has no body")

// Client performs plain HTTP/1.1 GETs against the oracle host. TLS is out
// of scope; port 443 is rejected at config load.
type Client struct {
	host string
	port int
	http *http.Client
}

// NewClient builds a client for host:port.
func NewClient(host string, port int) *Client {
	return &Client{
		host: host,
		port: port,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Host returns the host:port the client targets, for logging.
func (c *Client) Host() string {
	return net.JoinHostPort(c.host, fmt.Sprint(c.port))
}

// FetchWorkingDate performs one GET of the trade-date endpoint and returns
// the validated YYYY-MM-DD body. The connection is not reused.
func (c *Client) FetchWorkingDate() (string, error) {
	url := "http://" + c.Host() + tradeDatePath
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Req-From", "service")
	req.Close = true

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("read oracle response: %w", err)
	}
	date := strings.TrimSpace(string(body))
	if date == "" {
		return "", errEmptyBody
	}
	if !dateutil.Valid(date) {
		return "", fmt.Errorf("invalid date in oracle response: %q", date)
	}
	return date, nil
}
