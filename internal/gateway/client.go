// Package gateway is the HTTP boundary to the Amply API. It attaches the
// bearer token, normalizes error bodies and ends the session on a 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// TokenSource supplies the current bearer token; "" means anonymous.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// UnauthorizedFunc runs when an authenticated request gets a 401, before
// the caller sees the error.
type UnauthorizedFunc func(ctx context.Context)

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	QueryRetries int
	RetryDelay   time.Duration
	HTTPClient   *http.Client
	Tokens       TokenSource
	Metrics      *metrics.Metrics
	Logger       *log.Logger

	// UserAgent, when set, is sent on every request.
	UserAgent string
}

// Client performs JSON requests against the API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenSource
	queryRetries int
	retryDelay   time.Duration
	userAgent    string
	metrics      *metrics.Metrics
	logger       *log.Logger

	mu             sync.RWMutex
	onUnauthorized UnauthorizedFunc
}

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 300 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		httpClient:   hc,
		tokens:       tokens,
		queryRetries: opts.QueryRetries,
		retryDelay:   retryDelay,
		userAgent:    opts.UserAgent,
		metrics:      opts.Metrics,
		logger:       logger.With("component", "gateway"),
	}
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized installs the session-expiry hook. The session store and
// the gateway reference each other, so the hook is set after both exist.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// RequestOption adjusts a single request.
type RequestOption func(*request)

type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	anonymous bool
	token     string
}

// Anonymous sends the request without the bearer token. A 401 is then an
// ordinary APIError and does not end the session (login, register).
func Anonymous() RequestOption {
	return func(r *request) { r.anonymous = true }
}

// WithToken sends token in place of the session's. A 401 is then an
// ordinary APIError, as with Anonymous.
func WithToken(token string) RequestOption {
	return func(r *request) {
		r.anonymous = true
		r.token = token
	}
}

// WithQuery appends query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(r *request) { r.query = q }
}

// Get performs a query. Queries may be retried once on network errors and 5xx.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

// Post performs a mutation. Mutations are never retried.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

// Patch performs a mutation. Mutations are never retried.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opts)
}

// Delete performs a mutation. Mutations are never retried.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	r := &request{method: method, path: path, body: body}
	for _, opt := range opts {
		opt(r)
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.queryRetries
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if c.metrics != nil {
				c.metrics.APIRetries.WithLabelValues(EndpointLabel(path)).Inc()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		err = c.once(ctx, r, out)
		if err == nil || !retryable(ctx, err) {
			return err
		}
	}
	return err
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if asAPIError(err, &apiErr) {
		return apiErr.Temporary()
	}
	switch amplyerrors.CodeOf(err) {
	case amplyerrors.ErrCodeNetworkUnreachable, amplyerrors.ErrCodeNetworkTimeout:
		return true
	}
	return false
}

func (c *Client) once(ctx context.Context, r *request, out any) error {
	requestID := uuid.NewString()
	ctx = log.ContextWithRequestID(ctx, requestID)

	var reqBody io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return amplyerrors.Wrap(amplyerrors.ErrCodeAPIRequest, "failed to marshal request body", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reqBody)
	if err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeAPIRequest, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	token := r.token
	if !r.anonymous {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(r.method, EndpointLabel(r.path), 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.WarnContext(ctx, "request failed", "method", r.method, "path", r.path, "error", err)
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return amplyerrors.Wrap(amplyerrors.ErrCodeNetworkTimeout, "the Amply API did not respond in time", err)
		}
		return amplyerrors.NewNetworkError(err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(r.method, EndpointLabel(r.path), resp.StatusCode, time.Since(start))
	c.logger.DebugContext(ctx, "request", "method", r.method, "path", r.path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && token != "" && !r.anonymous {
		_, _ = io.Copy(io.Discard, resp.Body)
		if c.metrics != nil {
			c.metrics.SessionExpirations.Inc()
		}
		c.logger.InfoContext(ctx, "session expired", "path", r.path)
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook(ctx)
		}
		return amplyerrors.NewSessionExpiredError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return amplyerrors.NewNetworkError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return amplyerrors.Wrap(amplyerrors.ErrCodeAPIDecode, "failed to decode response", err)
	}
	return nil
}

// parseError builds an APIError from the {error: {code, message, param}}
// envelope, falling back to code "unknown" when the body is unusable.
func parseError(resp *http.Response, requestID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &APIError{
		Status:    resp.StatusCode,
		Code:      "unknown",
		Message:   "An error occurred",
		RequestID: requestID,
	}

	var envelope types.APIErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
		}
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
		apiErr.Param = envelope.Error.Param
	}
	return apiErr
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

// EndpointLabel collapses identifiers in path so metrics stay low-cardinality.
func EndpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := uuid.Parse(s); err == nil {
			segs[i] = ":id"
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}
