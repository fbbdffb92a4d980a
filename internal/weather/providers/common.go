package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecasting/internal/metrics"
)

// BackoffConfig controls how failed fetches are retried. The sleep after the
// n-th failed attempt is Factor^n seconds.
type BackoffConfig struct {
	MaxAttempts int
	Factor      float64
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client    *http.Client
	Timeout   time.Duration
	Backoff   BackoffConfig
	UserAgent string
}

// DefaultHTTPClientConfig matches the upstream fetch defaults: 15s per
// attempt, 3 attempts, backoff factor 1.5.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Client:  &http.Client{},
		Timeout: 15 * time.Second,
		Backoff: BackoffConfig{MaxAttempts: 3, Factor: 1.5},
	}
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errCircuitOpen   = errors.New("circuit breaker open")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// FetchError is returned once every attempt to fetch a URL has failed.
type FetchError struct {
	URL        string
	StatusCode int // last upstream status, 0 if none was received
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// JSONFetcher retrieves and decodes a JSON document.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, rawURL string, out any, opts ...FetchOption) error
}

type fetchOptions struct {
	timeout     time.Duration
	maxAttempts int
	factor      float64
	headers     map[string]string
}

// FetchOption overrides a Fetcher default for a single call.
type FetchOption func(*fetchOptions)

func WithTimeout(d time.Duration) FetchOption {
	return func(o *fetchOptions) { o.timeout = d }
}

func WithMaxAttempts(n int) FetchOption {
	return func(o *fetchOptions) { o.maxAttempts = n }
}

func WithBackoffFactor(f float64) FetchOption {
	return func(o *fetchOptions) { o.factor = f }
}

// WithHeaders adds request headers; they override the default User-Agent.
func WithHeaders(h map[string]string) FetchOption {
	return func(o *fetchOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

// Fetcher issues GET requests with per-attempt timeouts, exponential backoff
// between attempts and a circuit breaker per upstream host.
type Fetcher struct {
	cfg    HTTPClientConfig
	logger *zap.SugaredLogger

	mu       sync.Mutex
	circuits map[string]*gobreaker.CircuitBreaker

	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher. Zero values in cfg take the defaults.
func NewFetcher(cfg HTTPClientConfig, logger *zap.SugaredLogger) *Fetcher {
	def := DefaultHTTPClientConfig()
	if cfg.Client == nil {
		cfg.Client = def.Client
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Backoff.MaxAttempts == 0 {
		cfg.Backoff.MaxAttempts = def.Backoff.MaxAttempts
	}
	if cfg.Backoff.Factor == 0 {
		cfg.Backoff.Factor = def.Backoff.Factor
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fetcher{
		cfg:      cfg,
		logger:   logger,
		circuits: make(map[string]*gobreaker.CircuitBreaker),
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) circuit(host string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.circuits[host]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        host,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			// a rejected request says nothing about the upstream's health
			IsSuccessful: func(err error) bool {
				return err == nil || isClientError(err)
			},
		})
		f.circuits[host] = cb
	}
	return cb
}

// isClientError reports a 4xx response other than 429.
func isClientError(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
}

// backoffDelay is factor^attempt seconds.
func backoffDelay(factor float64, attempt int) time.Duration {
	return time.Duration(math.Pow(factor, float64(attempt)) * float64(time.Second))
}

// FetchJSON GETs rawURL and decodes the JSON body into out. Transport
// failures, non-2xx statuses and undecodable bodies are retried; after the
// last attempt the final error is returned wrapped in a *FetchError.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, out any, opts ...FetchOption) error {
	o := fetchOptions{
		timeout:     f.cfg.Timeout,
		maxAttempts: f.cfg.Backoff.MaxAttempts,
		factor:      f.cfg.Backoff.Factor,
	}
	if f.cfg.UserAgent != "" {
		o.headers = map[string]string{"User-Agent": f.cfg.UserAgent}
	}
	for _, opt := range opts {
		opt(&o)
	}

	if f.cfg.Client == nil {
		return errNoHTTPClient
	}
	if o.maxAttempts < 1 || o.factor <= 0 || o.timeout <= 0 {
		return errInvalidConfig
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	cb := f.circuit(u.Host)

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = f.attempt(ctx, cb, rawURL, o, out)
		metrics.RecordFetchAttempt(lastErr)
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, errCircuitOpen) || ctx.Err() != nil || attempt >= o.maxAttempts {
			return newFetchError(rawURL, attempt, lastErr)
		}

		delay := backoffDelay(o.factor, attempt)
		f.logger.Warnw("fetch attempt failed, retrying",
			"host", u.Host,
			"attempt", attempt,
			"max_attempts", o.maxAttempts,
			"backoff", delay,
			"error", lastErr,
		)
		if err := f.sleep(ctx, delay); err != nil {
			return newFetchError(rawURL, attempt, err)
		}
	}
}

func newFetchError(rawURL string, attempts int, err error) *FetchError {
	fe := &FetchError{URL: rawURL, Attempts: attempts, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		fe.StatusCode = se.StatusCode
	}
	return fe
}

func (f *Fetcher) attempt(ctx context.Context, cb *gobreaker.CircuitBreaker, rawURL string, o fetchOptions, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := f.cfg.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
