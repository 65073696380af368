// Package httpclient provides a minimal HTTP request factory bound to a base
// URL, default headers, default query parameters, and a response-handling
// strategy. All response interpretation (success/failure decision, envelope
// unwrapping) is delegated to the injected handler, which is how three distinct
// backends share one request mechanism.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrRequestFailed indicates a non-2xx backend response with no more specific
// failure mapping.
var ErrRequestFailed = errors.New("httpclient: request failed")

// defaultTimeout bounds every request so a silent network failure cannot hang
// a caller indefinitely.
const defaultTimeout = 30 * time.Second

// ResponseHandler decides whether a response is a success and extracts the
// substantive payload from it.
type ResponseHandler func(resp *http.Response) ([]byte, error)

// HeaderHook mutates the outgoing request headers just before a request is
// sent. Used to attach dynamic credentials.
type HeaderHook func(h http.Header)

// Client issues requests against a single backend base URL.
type Client struct {
	base    *url.URL
	headers http.Header
	query   url.Values
	hook    HeaderHook
	handle  ResponseHandler
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHeaders sets default headers attached to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) { c.headers = h }
}

// WithQuery sets default query parameters attached to every request.
// Per-call parameters are merged over these, per-call wins.
func WithQuery(q url.Values) Option {
	return func(c *Client) { c.query = q }
}

// WithHeaderHook installs a hook invoked on every request's headers.
func WithHeaderHook(hook HeaderHook) Option {
	return func(c *Client) { c.hook = hook }
}

// WithResponseHandler replaces the default response handler.
func WithResponseHandler(h ResponseHandler) Option {
	return func(c *Client) { c.handle = h }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a Client bound to baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}

	c := &Client{
		base:    base,
		headers: make(http.Header),
		query:   make(url.Values),
		handle:  DefaultHandler,
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET request for path with the given per-call query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request for path. A non-nil body is JSON-serialized.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, query, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.base.JoinPath(path)
	target.RawQuery = c.mergeQuery(query).Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	if c.hook != nil {
		c.hook(req.Header)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	return c.handle(resp)
}

// mergeQuery combines default and per-call query parameters, per-call wins.
func (c *Client) mergeQuery(query url.Values) url.Values {
	merged := make(url.Values, len(c.query)+len(query))
	for key, values := range c.query {
		merged[key] = values
	}
	for key, values := range query {
		merged[key] = values
	}
	return merged
}

// DefaultHandler treats any 2xx response as a success and returns the raw body.
func DefaultHandler(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}
	return body, nil
}
