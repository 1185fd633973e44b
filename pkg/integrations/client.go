package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/licensetower/pkg/errors"
	"github.com/matzehuels/licensetower/pkg/httputil"
	"github.com/matzehuels/licensetower/pkg/observability"
)

// Options configures a [Client]. The zero value is usable.
type Options struct {
	HTTPClient *http.Client      // Defaults to NewHTTPClient()
	Headers    map[string]string // Applied to every request
	RateLimit  float64           // Requests per second; 0 disables limiting
	Attempts   int               // Retry attempts; defaults to httputil.DefaultAttempts
	RetryDelay time.Duration     // Initial retry delay; defaults to httputil.DefaultDelay
}

// Client provides shared HTTP functionality for all registry API clients.
// It handles retry logic, rate limiting and common request headers.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	headers  map[string]string
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:     opts.HTTPClient,
		headers:  opts.Headers,
		attempts: opts.Attempts,
		delay:    opts.RetryDelay,
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	if c.attempts <= 0 {
		c.attempts = httputil.DefaultAttempts
	}
	if c.delay <= 0 {
		c.delay = httputil.DefaultDelay
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		body, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", url)
		}
		return nil
	})
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Useful for non-JSON endpoints like LICENSE files or plain text responses.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	return c.GetTextWithHeaders(ctx, url, nil)
}

// GetTextWithHeaders is [Client.GetText] with additional headers.
func (c *Client) GetTextWithHeaders(ctx context.Context, url string, headers map[string]string) (string, error) {
	var text string
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		body, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		text = string(data)
		return nil
	})
	return text, err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := requestTarget(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func requestTarget(u *url.URL) (host, path string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkResponse(resp *http.Response) error {
	err := checkStatus(resp.StatusCode)
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		err = httputil.Retryable(fmt.Errorf("%w: %w", ErrRateLimited, &errors.RateLimitedError{RetryAfter: retryAfter}))
	}
	return err
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(ErrRateLimited)
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
