// Package upstream provides the shared HTTP session used by the market-data sources.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"solana-token-scanner/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 0
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultUserAgent   = "solana-token-scanner/1.0"
)

// Error taxonomy for upstream calls.
var (
	// ErrTransport is returned when the upstream is unreachable or answers non-2xx.
	ErrTransport = errors.New("upstream transport error")

	// ErrDecode is returned when the upstream body is not valid JSON for the target.
	ErrDecode = errors.New("upstream decode error")
)

// Client is a session-scoped HTTP client shared by the sources of one scan flow.
// The underlying http.Client is created on first use and released by Close.
type Client struct {
	name        string
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	userAgent   string
	transport   http.RoundTripper

	mu      sync.Mutex
	session *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts. Zero disables retries.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTransport sets a custom round tripper for the session.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

// NewClient creates a new upstream client. No connection is made until the first request.
func NewClient(name string, opts ...ClientOption) *Client {
	c := &Client{
		name:        name,
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the client name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Open reports whether the session has been created and not yet released.
func (c *Client) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// httpClient returns the session, creating it on first use.
func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		transport := c.transport
		if transport == nil {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}
		c.session = &http.Client{Timeout: c.timeout, Transport: transport}
	}
	return c.session
}

// Close releases the session. A later request opens a new one.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.CloseIdleConnections()
		c.session = nil
	}
	return nil
}

// GetJSON performs a GET request and decodes the JSON body into result.
// Transport failures and non-2xx answers wrap ErrTransport; body decode failures wrap ErrDecode.
// Only transport failures and 429/5xx answers are retried, and only when retries are enabled.
func (c *Client) GetJSON(ctx context.Context, url string, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w: retry aborted: %w", ErrTransport, ctx.Err())
			case <-timer.C:
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		retry, err := c.get(ctx, url, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	return lastErr
}

// get performs one attempt and reports whether the failure is retryable.
func (c *Client) get(ctx context.Context, url string, result interface{}) (bool, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		observability.RecordUpstreamRequest(c.name, "error", time.Since(start).Seconds())
		if ctx.Err() != nil {
			return false, fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		}
		return true, fmt.Errorf("%w: http request: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	observability.RecordUpstreamRequest(c.name, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return true, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, fmt.Errorf("%w: unexpected status %d: %s", ErrTransport, resp.StatusCode, truncate(body, 256))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return false, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return false, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
