package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000/api"
	DefaultTimeout = 30 * time.Second
)

// Config is the immutable configuration captured at construction.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues calls against the backend through the interceptor pipeline.
// It is safe for concurrent use and holds no mutable state.
type Client struct {
	cfg       Config
	transport Transport
	chain     pipeline
}

// Option customizes client construction.
type Option func(*Client)

// WithTransport replaces the resty transport, mainly for tests.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithRequestFuncs replaces the request chain.
func WithRequestFuncs(fns ...RequestFunc) Option {
	return func(c *Client) { c.chain.requests = fns }
}

// WithResponseFuncs replaces the response chain.
func WithResponseFuncs(fns ...ResponseFunc) Option {
	return func(c *Client) { c.chain.responses = fns }
}

// New builds the configured client. The default chain is PassThrough on the
// way out and LogFailures on the way back.
func New(cfg Config, log Logger, opts ...Option) (*Client, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	log = ensureLogger(log)

	c := &Client{
		cfg: cfg,
		chain: pipeline{
			requests:  []RequestFunc{PassThrough()},
			responses: []ResponseFunc{LogFailures(log)},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(cfg.BaseURL, cfg.Timeout, log)
	}
	return c, nil
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.Timeout < 0 {
		return Config{}, errors.New("timeout must not be negative")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// Do performs req and returns the response body. Failures are returned as-is
// after passing through the response chain.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if c == nil || c.transport == nil {
		return nil, errors.New("http client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := c.chain.run(ctx, c.transport, req, validateRequest(req))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Body(), nil
}

// Get issues a GET for path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST for path with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
}

// validateRequest rejects descriptors that cannot be resolved against the base URL.
func validateRequest(req Request) error {
	if strings.TrimSpace(req.Method) == "" {
		return newRequestError(req, "request method is empty")
	}
	u, err := url.Parse(req.Path)
	if err != nil {
		return newRequestError(req, "invalid request path %q: %v", req.Path, err)
	}
	if u.IsAbs() || u.Host != "" {
		return newRequestError(req, "request path %q must be relative", req.Path)
	}
	return nil
}
