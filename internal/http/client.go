package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// Common errors.
var (
	ErrNotFound         = errors.New("http: resource not found")
	ErrForbidden        = errors.New("http: access forbidden")
	ErrUnauthorized     = errors.New("http: unauthorized")
	ErrServerError      = errors.New("http: server error")
	ErrUnexpectedStatus = errors.New("http: unexpected status code")
	ErrBodyTooLarge     = errors.New("http: response body too large")
)

// DefaultUserAgent is sent with every request unless Options.UserAgent is set.
const DefaultUserAgent = "mastoyoink"

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 16
	MaxIdleConnsPerHost int

	// Timeout for individual requests, including reading the body.
	// Default: 30s
	Timeout time.Duration

	// RetryAttempts is the number of retries after the first attempt.
	// Zero disables retries.
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 500ms
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 5s
	RetryMaxBackoff time.Duration

	// MaxBodySize caps the bytes read by GetBytes and GetJSON.
	// Zero means no limit.
	MaxBodySize int64

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Transport replaces the pooled transport built by NewClient.
	// Tests use it to trust httptest TLS certificates.
	Transport http.RoundTripper
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 16,
		Timeout:             30 * time.Second,
		RetryAttempts:       2,
		RetryBackoff:        500 * time.Millisecond,
		RetryMaxBackoff:     5 * time.Second,
	}
}

// Client is an HTTP client for many small GET requests.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = DefaultOptions().MaxIdleConnsPerHost
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultOptions().RetryBackoff
	}
	if opts.RetryMaxBackoff <= 0 {
		opts.RetryMaxBackoff = DefaultOptions().RetryMaxBackoff
	}
	if opts.RetryAttempts < 0 {
		opts.RetryAttempts = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
			MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// WithRetries returns a client sharing c's connection pool that retries
// failed requests the given number of times.
func (c *Client) WithRetries(attempts int) *Client {
	if attempts < 0 {
		attempts = 0
	}
	opts := c.opts
	opts.RetryAttempts = attempts
	return &Client{client: c.client, opts: opts}
}

// RetryAttempts reports how many times a failed request is retried.
func (c *Client) RetryAttempts() int {
	return c.opts.RetryAttempts
}

// getOnce performs a single GET request and returns the response body on
// success. The caller must close the body.
func (c *Client) getOnce(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if err := checkStatusCode(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w (%s)", err, resp.Status)
	}

	return resp.Body, nil
}

// GetBytes performs a GET request and reads the whole body. A body that
// fails mid-read is retried like a transport error.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		body, err := c.getOnce(ctx, url)
		if err != nil {
			if !retryable(err) {
				return nil, fmt.Errorf("get %s: %w", url, err)
			}
			lastErr = err
			continue
		}

		data, err := c.readBody(body)
		body.Close()
		if errors.Is(err, ErrBodyTooLarge) {
			return nil, fmt.Errorf("get %s: %w", url, err)
		}
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}

		return data, nil
	}

	return nil, c.exhausted(url, lastErr)
}

// GetJSON performs a GET request and decodes the JSON body into v.
// Decode errors are not retried.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

var errBadRequest = errors.New("http: invalid request")

func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if c.opts.MaxBodySize <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, c.opts.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.opts.MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.opts.MaxBodySize)
	}
	return data, nil
}

func (c *Client) exhausted(url string, lastErr error) error {
	if c.opts.RetryAttempts == 0 {
		return fmt.Errorf("get %s: %w", url, lastErr)
	}
	return fmt.Errorf("get %s failed after %d attempts: %w", url, c.opts.RetryAttempts+1, lastErr)
}

// retryable reports whether a failed single attempt may succeed on retry.
// Client errors (4xx) and malformed requests are final.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, errBadRequest),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnexpectedStatus):
		return false
	}
	return true
}

// backoff waits for an exponentially increasing duration with jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > c.opts.RetryMaxBackoff || backoff <= 0 {
		backoff = c.opts.RetryMaxBackoff
	}

	// Add jitter: 0.5 to 1.5 of backoff
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	timer := time.NewTimer(jitter)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
}
