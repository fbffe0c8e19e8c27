// Package api is the console's client for the platform REST API.
//
// Fetch is the low-level primitive: it attaches the base URL, the JSON content
// type, ambient cookies and an optional bearer token, and returns the raw
// response without parsing or retrying. The typed calls in projects.go and
// Authenticate are built on it.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultOrigin is what an empty base URL resolves to. A browser would issue
// same-origin requests; the console's "own origin" is the local platform.
const DefaultOrigin = "http://localhost:3000"

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a per-request uuid for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to the platform API.
type Client struct {
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	limiter       *rate.Limiter
	sessionCookie string
	logger        *zap.Logger
	tracer        trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client the Client copies. The copy gets a
// cookie jar if hc has none; hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It applies whatever http.Client
// is supplied, in any option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit throttles outgoing requests client-side. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionCookie sends a raw cookie (e.g. "session_token=abc") on every request.
func WithSessionCookie(cookie string) Option {
	return func(c *Client) { c.sessionCookie = strings.TrimSpace(cookie) }
}

// WithLogger sets the logger used for request debug lines.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for baseURL. Empty baseURL means DefaultOrigin.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("keyconsole/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.http
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	c.http = &hc
	return c, nil
}

// NormalizeBaseURL trims whitespace and trailing slashes; empty becomes DefaultOrigin.
func NormalizeBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return DefaultOrigin
	}
	return base
}

// BaseURL returns the resolved API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes a request for Fetch. Method defaults to GET.
type RequestOptions struct {
	Method string
	Body   io.Reader
	Header http.Header
}

// Fetch issues a request to path under the base URL and returns the raw
// response. Content-Type is always application/json, ambient cookies are
// always sent, and Authorization: Bearer is added when token is non-empty.
// The caller owns the response body.
func (c *Client) Fetch(ctx context.Context, path string, opts RequestOptions, token string) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.resolve(path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, url, opts.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	if c.sessionCookie != "" {
		req.Header.Add("Cookie", c.sessionCookie)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
