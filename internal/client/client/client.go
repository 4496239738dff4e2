package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/client/endpoint"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout  = 10 * time.Second
	AuthScheme      = "Token"
	RequestIDHeader = "X-Request-ID"

	maxResponseBody = 4 << 20
)

// EndpointSource yields the current normalized base URL, ending in "/".
type EndpointSource interface {
	Endpoint() (string, bool)
}

// Authenticator owns the session token used by credentialed calls.
type Authenticator interface {
	// Token returns the in-memory token, or "" when there is none.
	Token() string
	// Refresh returns a token to retry with after rejected got a 401.
	Refresh(ctx context.Context, rejected string) (string, error)
	// Invalidate is called when a credentialed call ends in a final 401.
	Invalidate(ctx context.Context, rejected string)
}

// Request describes one logical backend call. Path is relative to the
// endpoint, e.g. "auth/login/".
type Request struct {
	Method    string
	Path      string
	Body      any
	Header    http.Header
	Anonymous bool
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

type Client struct {
	endpoints EndpointSource
	http      *http.Client
	timeout   time.Duration
	log       logging.Logger
	metrics   *Metrics

	mu   sync.RWMutex
	auth Authenticator

	refreshes singleflight.Group
}

type Option func(*Client)

// WithTimeout sets the per-send timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client bound to endpoints. The endpoint is resolved on
// every call.
func New(endpoints EndpointSource, opts ...Option) *Client {
	c := &Client{
		endpoints: endpoints,
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthenticator installs the token owner. Without one every call is sent
// without credentials and a 401 is returned as a plain *StatusError.
func (c *Client) SetAuthenticator(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

func (c *Client) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// ResolveURL joins path onto the current endpoint.
func (c *Client) ResolveURL(path string) (string, error) {
	base, ok := c.endpoints.Endpoint()
	if !ok {
		return "", endpoint.ErrNotInitialized
	}
	return base + strings.TrimLeft(path, "/"), nil
}

// Send performs req and returns the 2xx response. Non-2xx responses are
// returned as *StatusError; a credentialed 401 is refreshed and retried once.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	att := &attempt{id: uuid.NewString(), req: req}
	if req.Body != nil {
		body, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		att.body = body
	}

	auth := c.authenticator()
	if auth == nil {
		att.req.Anonymous = true
	} else if !req.Anonymous {
		att.token = auth.Token()
	}

	for {
		resp, err := c.send(ctx, att)
		if err != nil {
			att.state = stateFailed
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			att.state = stateDone
			return resp, nil
		}

		statusErr := newStatusError(resp)
		if resp.StatusCode != http.StatusUnauthorized || att.req.Anonymous {
			att.state = stateFailed
			return nil, statusErr
		}

		if !att.canRetry() {
			att.state = stateFailed
			c.log.Warn(ctx, "request rejected after retry", "request_id", att.id, "path", req.Path)
			auth.Invalidate(ctx, att.token)
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, statusErr)
		}

		att.state = stateRefreshing
		token, err := c.refresh(ctx, auth, att.token)
		if errors.Is(err, ErrNoCredential) {
			att.state = stateFailed
			return nil, statusErr
		}
		if err != nil {
			att.state = stateFailed
			c.log.Warn(ctx, "token refresh failed", "request_id", att.id, "error", err)
			auth.Invalidate(ctx, att.token)
			return nil, fmt.Errorf("%w: %w (refresh: %w)", ErrSessionExpired, statusErr, err)
		}

		att.token = token
		att.retried = true
		att.state = stateRetried
		c.metrics.observeRetry()
		c.log.Debug(ctx, "retrying with refreshed token", "request_id", att.id, "token", logging.Redact(token))
	}
}

// refresh coalesces concurrent refreshes for the same rejected token.
func (c *Client) refresh(ctx context.Context, auth Authenticator, rejected string) (string, error) {
	v, err, _ := c.refreshes.Do(rejected, func() (any, error) {
		return auth.Refresh(ctx, rejected)
	})
	if err == nil {
		if token, _ := v.(string); token != "" && token != rejected {
			c.metrics.observeRefresh(true)
			return token, nil
		}
		err = errors.New("no new credential")
	}
	c.metrics.observeRefresh(false)
	return "", err
}

func (c *Client) send(ctx context.Context, att *attempt) (*Response, error) {
	target, err := c.ResolveURL(att.req.Path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if att.body != nil {
		body = bytes.NewReader(att.body)
	}

	hreq, err := http.NewRequestWithContext(ctx, att.req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range att.req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Accept", "application/json")
	if att.body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set(RequestIDHeader, att.id)
	if !att.req.Anonymous && att.token != "" {
		hreq.Header.Set("Authorization", AuthScheme+" "+att.token)
	}

	att.sends++
	att.state = stateSent
	start := time.Now()

	hresp, err := c.http.Do(hreq)
	if err != nil {
		c.metrics.observeRequest(att.req.Method, 0, time.Since(start))
		c.log.Debug(ctx, "request failed", "request_id", att.id, "path", att.req.Path, "error", err)
		return nil, transportError(ctx, err)
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(hresp.Body, maxResponseBody))
	c.metrics.observeRequest(att.req.Method, hresp.StatusCode, time.Since(start))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	c.log.Debug(ctx, "request completed",
		"request_id", att.id,
		"method", att.req.Method,
		"path", att.req.Path,
		"status", hresp.StatusCode,
		"send", att.sends,
	)

	return &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       data,
		RequestID:  att.id,
	}, nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrNetworkTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
}

// Do sends req and decodes a JSON response body into out when out is not nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Path, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}
