// Package client is a typed HTTP client for the pharmascript REST API. The
// admin screens and CLI use it; it performs no caching and no retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/pkg/problem"
)

const (
	RequestIDHeader = "X-Request-ID"
	MergePatchJSON  = "application/merge-patch+json"

	maxErrorBody = 64 << 10
)

// ErrNotFound matches an *Error for a 404 response.
var ErrNotFound = errors.New("not found")

// ErrMissingID is returned when an operation needs an id the record lacks.
var ErrMissingID = errors.New("record has no id")

// Error is a non-2xx response. Problem is set when the body was a problem
// document.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Problem    *problem.Problem
}

func (e *Error) Error() string {
	msg := http.StatusText(e.StatusCode)
	if e.Problem != nil {
		switch {
		case e.Problem.Detail != "":
			msg = e.Problem.Detail
		case e.Problem.Title != "":
			msg = e.Problem.Title
		}
		if e.Problem.Message != "" {
			msg += " (" + e.Problem.Message + ")"
		}
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client sends requests to one pharmascript server.
type Client struct {
	base       *url.URL
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 15s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:       u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes a JSON response into out when out is
// non-nil. It reports whether the response carried a body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, in, out any) (http.Header, bool, error) {
	target := c.resolve(path, query)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, false, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rid := uuid.NewString()
	req.Header.Set(RequestIDHeader, rid)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", target).Str("request_id", rid).Msg("request failed")
		return nil, false, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Str("request_id", rid).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, false, c.errorFrom(resp, method, target)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, false, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return resp.Header, false, nil
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.Header, false, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.Header, true, nil
}

func (c *Client) errorFrom(resp *http.Response, method, target string) error {
	e := &Error{Method: method, URL: target, StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(raw) > 0 {
		var p problem.Problem
		if err := json.Unmarshal(raw, &p); err == nil && (p.Status != 0 || p.Title != "" || p.ErrorKey != "") {
			e.Problem = &p
		}
	}
	return e
}
