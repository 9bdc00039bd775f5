package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultBackoff   = 200 * time.Millisecond
	DefaultRateLimit = 0 // unlimited
	DefaultBurst     = 10

	maxBackoff      = 5 * time.Second
	maxResponseSize = 64 << 20
)

// Options configures HTTP clients. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Timeout   time.Duration
	Retries   uint64
	Backoff   time.Duration
	RateLimit float64 // requests per second per endpoint; 0 disables
	Burst     int
	Cache     Cache
	HTTP      *http.Client
	Logger    *slog.Logger
}

// DefaultOptions returns the settings used when no config file is present.
func DefaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		Backoff:   DefaultBackoff,
		RateLimit: DefaultRateLimit,
		Burst:     DefaultBurst,
	}
}

// HTTPDialer memoizes one HTTPClient per endpoint so that the rate limit and
// caches are shared by every query against that endpoint.
type HTTPDialer struct {
	opts Options

	mu      sync.Mutex
	clients map[string]*HTTPClient
}

// NewDialer creates a dialer with the given options.
func NewDialer(opts Options) *HTTPDialer {
	return &HTTPDialer{opts: opts, clients: make(map[string]*HTTPClient)}
}

// Dial returns the client for endpoint, creating it on first use.
func (d *HTTPDialer) Dial(endpoint string) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("empty endpoint")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.clients[endpoint]; ok {
		return c, nil
	}
	c := NewHTTPClient(endpoint, d.opts)
	d.clients[endpoint] = c
	return c, nil
}

// HTTPClient speaks JSON-RPC 2.0 to a single fullnode.
type HTTPClient struct {
	endpoint string
	opts     Options
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	nextID   atomic.Uint64

	inflight    singleflight.Group
	checkpoints *lruCache
	names       *lruCache
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for endpoint.
func NewHTTPClient(endpoint string, opts Options) *HTTPClient {
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	return &HTTPClient{
		endpoint:    endpoint,
		opts:        opts,
		http:        hc,
		limiter:     limiter,
		logger:      logger.With("endpoint", endpoint),
		checkpoints: newLRUCache(maxCachedCheckpoints),
		names:       newLRUCache(maxCachedNames),
	}
}

// Endpoint returns the URL this client talks to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call runs method and decodes the result into out. Cacheable calls consult
// the persistent cache first and populate it on success. Identical concurrent
// calls share one round trip.
func (c *HTTPClient) call(ctx context.Context, method string, cacheable bool, out any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", method, err)
	}

	cache := c.opts.Cache
	if cacheable && cache != nil {
		raw, ok, err := cache.Get(ctx, c.endpoint, method, encoded)
		if err != nil {
			c.logger.Warn("rpc cache read failed", "method", method, "error", err)
		} else if ok {
			return decodeResult(method, raw, out)
		}
	}

	// The shared round trip ignores caller cancellation. Each caller stops
	// waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(method+string(encoded), func() (any, error) {
		return c.roundTrip(shared, method, params)
	})
	var raw json.RawMessage
	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		raw = res.Val.(json.RawMessage)
	case <-ctx.Done():
		return ctx.Err()
	}

	if cacheable && cache != nil && !isNull(raw) {
		if err := cache.Put(ctx, c.endpoint, method, encoded, raw); err != nil {
			c.logger.Warn("rpc cache write failed", "method", method, "error", err)
		}
	}
	return decodeResult(method, raw, out)
}

func (c *HTTPClient) roundTrip(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	backoff := retry.NewExponential(c.opts.Backoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithMaxRetries(c.opts.Retries, backoff)

	var result json.RawMessage
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		raw, err := c.post(ctx, method, params)
		if err != nil {
			if retryable(err) {
				c.logger.Debug("rpc retry", "method", method, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		result = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) post(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("rpc call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode/100 != 2 {
		return nil, &Error{
			Endpoint: c.endpoint,
			Method:   method,
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(data)),
		}
	}

	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s %s: decode response: %w", c.endpoint, method, err)
	}
	if r.Error != nil {
		return nil, &Error{
			Endpoint: c.endpoint,
			Method:   method,
			Code:     r.Error.Code,
			Message:  r.Error.Message,
		}
	}
	return r.Result, nil
}

// Is makes errors.Is(err, ErrNotFound) match the node's not-found messages.
func (e *Error) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	msg := strings.ToLower(e.Message)
	return e.Status == http.StatusNotFound && e.Code == 0 ||
		strings.Contains(msg, "not find") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not exist")
}

// retryable reports whether an attempt may succeed if repeated. Transport
// failures, timeouts, 429 and 5xx qualify; JSON-RPC errors do not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code == 0 && (rerr.Status == http.StatusTooManyRequests || rerr.Status >= 500)
	}
	return true
}

func decodeResult(method string, raw json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
