package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"moviedata/internal/logging"
)

const (
	defaultHTTPTimeout    = 10 * time.Second
	defaultMinInterval    = 250 * time.Millisecond
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// ErrNotFound reports a 404 from TMDB. It is never retried.
var ErrNotFound = errors.New("tmdb: resource not found")

// Client provides throttled, retrying access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	logger     *slog.Logger

	minInterval      time.Duration
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(context.Context, time.Duration) error

	mu       sync.Mutex
	lastCall time.Time
	requests int
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMinInterval sets the minimum delay between two requests.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval >= 0 {
			c.minInterval = interval
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how throttle and retry waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:           apiKey,
		baseURL:          strings.TrimRight(baseURL, "/"),
		language:         strings.TrimSpace(language),
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		minInterval:      defaultMinInterval,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          sleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.sleeper == nil {
		client.sleeper = sleepWithContext
	}
	client.logger = logging.NewComponentLogger(client.logger, "tmdb")
	return client, nil
}

// Requests returns the number of HTTP requests issued so far, retries included.
func (c *Client) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

// MovieDetails fetches movie details by TMDB ID. appendTo names sub-resources
// (AppendCredits, AppendKeywords) embedded in the same response.
func (c *Client) MovieDetails(ctx context.Context, movieID int64, appendTo ...string) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := c.baseParams()
	if extra := joinAppend(appendTo); extra != "" {
		params.Set("append_to_response", extra)
	}
	var payload Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload, "tmdb movie details"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchMovie searches TMDB for the supplied title. A positive year restricts
// the search to that primary release year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.baseParams()
	params.Set("query", query)
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	var payload SearchResponse
	if err := c.getJSON(ctx, "/search/movie", params, &payload, "tmdb search"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Ping verifies the API key with a single unretried configuration request.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}
	_, err := c.doOnce(ctx, "/configuration", c.baseParams(), io.Discard)
	return err
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return params
}

func joinAppend(values []string) string {
	seen := make(map[string]struct{}, len(values))
	parts := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		parts = append(parts, value)
	}
	return strings.Join(parts, ",")
}

type httpStatusError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d", e.StatusCode)
}

// StatusCode extracts the HTTP status of a failed request.
func StatusCode(err error) (int, bool) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound, true
	}
	return 0, false
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any, op string) error {
	attempts := c.retryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return err
		}
		body, err := c.doOnce(ctx, path, params, nil)
		if err == nil {
			decodeErr := json.Unmarshal(body, out)
			if decodeErr == nil {
				return nil
			}
			return fmt.Errorf("%s: decode response: %w", op, decodeErr)
		}
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		if !retryable(err) || attempt == attempts {
			break
		}
		delay := c.backoff(attempt, err)
		c.logger.Debug("tmdb request failed; retrying",
			logging.String("op", op),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Error(err),
		)
		if err := c.sleeper(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, path string, params url.Values, sink io.Writer) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.mu.Lock()
	c.requests++
	c.mu.Unlock()

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &httpStatusError{StatusCode: resp.StatusCode, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if sink != nil {
		_, err = io.Copy(sink, resp.Body)
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response (latency=%v): %w", latency, err)
	}
	return body, nil
}

// throttle enforces the minimum interval since the previous request.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Duration(0)
	if !c.lastCall.IsZero() {
		if elapsed := time.Since(c.lastCall); elapsed < c.minInterval {
			wait = c.minInterval - elapsed
		}
	}
	c.mu.Unlock()

	if wait > 0 {
		if err := c.sleeper(ctx, wait); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.lastCall = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) backoff(attempt int, err error) time.Duration {
	delay := c.retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > delay {
		delay = statusErr.RetryAfter
		if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
			delay = c.retryMaxDelay
		}
	}
	return delay
}

func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return true
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
