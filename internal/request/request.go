// Package request fetches HTTP resources for tool scripts: plain text or
// decoded JSON, with per-host authentication and typed status errors.
package request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"

	"github.com/thellimist/clite/internal/logx"
)

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client issues requests. It is safe for concurrent use.
type Client struct {
	rc       *resty.Client
	auth     Provider
	hostAuth map[string]Provider
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rc.SetTimeout(d) }
}

// WithAuth authenticates requests to hosts without a host-specific provider.
func WithAuth(p Provider) Option {
	return func(c *Client) { c.auth = p }
}

// WithHostAuth authenticates requests to host (host or host:port).
func WithHostAuth(host string, p Provider) Option {
	return func(c *Client) { c.hostAuth[strings.ToLower(host)] = p }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.rc.SetHeader(key, value) }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry retries idempotent requests on transport errors and 5xx
// responses.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.rc.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{
		rc: resty.New().
			SetTimeout(DefaultTimeout).
			SetResponseBodyUnlimitedReads(true).
			SetHeader("User-Agent", "clite"),
		hostAuth: make(map[string]Provider),
		logger:   logx.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.rc.SetLogger(c.logger)
	c.rc.AddRequestMiddleware(c.authenticate)
	return c
}

// Close releases idle connections.
func (c *Client) Close() error { return c.rc.Close() }

// Response is a successful response with its body read.
type Response struct {
	URL      string
	Code     int
	Header   http.Header
	Body     []byte
	Duration time.Duration
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("request: decoding %s: %w", r.URL, err)
	}
	return nil
}

// StatusError reports a response outside 2xx.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
	if b := strings.TrimSpace(e.Body); b != "" {
		if len(b) > 200 {
			b = b[:200] + "..."
		}
		msg += ": " + b
	}
	return msg
}

// Get fetches rawURL. A 401 gives the provider one chance to refresh its
// credentials before the request is retried.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		if p := c.providerFor(rawURL); p != nil {
			retry, rerr := p.OnUnauthorized(ctx, resp.RawResponse)
			if rerr != nil {
				c.logger.WithError(rerr).WithField("url", rawURL).Debug("re-authentication failed")
			}
			if retry {
				if resp, err = c.get(ctx, rawURL); err != nil {
					return nil, err
				}
			}
		}
	}

	if !resp.IsSuccess() {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode(), Body: string(resp.Bytes())}
	}
	return &Response{
		URL:      rawURL,
		Code:     resp.StatusCode(),
		Header:   resp.Header(),
		Body:     resp.Bytes(),
		Duration: resp.Duration(),
	}, nil
}

// Text fetches rawURL and returns the body as a string.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// JSON fetches rawURL and decodes the body into v.
func (c *Client) JSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	return resp.JSON(v)
}

func (c *Client) get(ctx context.Context, rawURL string) (*resty.Response, error) {
	start := time.Now()
	resp, err := c.rc.R().SetContext(ctx).Get(rawURL)
	entry := c.logger.WithFields(log.Fields{
		"url":      rawURL,
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return nil, fmt.Errorf("request: GET %s: %w", rawURL, err)
	}
	entry.WithField("status", resp.StatusCode()).Debug("request done")
	return resp, nil
}

func (c *Client) authenticate(_ *resty.Client, r *resty.Request) error {
	p := c.providerFor(r.URL)
	if p == nil {
		return nil
	}
	headers, err := p.Headers(r.Context())
	if err != nil {
		return fmt.Errorf("request: authenticating %s: %w", r.URL, err)
	}
	for k, v := range headers {
		r.SetHeader(k, v)
	}
	return nil
}

func (c *Client) providerFor(rawURL string) Provider {
	if u, err := url.Parse(rawURL); err == nil {
		if p, ok := c.hostAuth[strings.ToLower(u.Host)]; ok {
			return p
		}
		if p, ok := c.hostAuth[strings.ToLower(u.Hostname())]; ok {
			return p
		}
	}
	return c.auth
}
