// Package api is the HTTP client of the portal backend.
//
// Every endpoint answers a JSON object with a "success" flag. When it is
// false, "error" holds the message shown to the user verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
)

// DefaultBaseURL is the address of a local backend.
const DefaultBaseURL = "http://localhost:5000"

// Client talks to the backend. It implements portal.Source and
// assistant.Backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

var (
	_ portal.Source     = (*Client)(nil)
	_ assistant.Backend = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger of the round trips.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// WithTimeout bounds every request. Zero, the default, means no bound.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithClock sets the time source of the cache busting parameter.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New returns a client of the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: want scheme://host", baseURL)
	}
	c := &Client{base: u, log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(c.log, c.timeout)
	}
	return c, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.base.String() }

// path joins escaped segments under /api.
func path(segments ...string) string {
	var b strings.Builder
	b.WriteString("/api")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// call performs one request and returns the body of a successful envelope.
func (c *Client) call(ctx context.Context, method, p string, query url.Values, in any) ([]byte, error) {
	op := method + " " + p
	u := *c.base
	u.Path += p
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &portal.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &portal.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &portal.TransportError{Op: op, Err: err}
	}
	if err := envelope(resp.StatusCode, data); err != nil {
		if te, ok := err.(*portal.TransportError); ok {
			te.Op = op
		}
		return nil, err
	}
	return data, nil
}

// envelope checks the success flag of a response body.
func envelope(status int, data []byte) error {
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return &portal.TransportError{Err: fmt.Errorf("%d %s: not json: %w", status, http.StatusText(status), err)}
	}
	success, _ := first(jsonpath.Get("$.success", obj)).(bool)
	msg, _ := first(jsonpath.Get("$.error", obj)).(string)
	switch {
	case status >= 200 && status < 300 && (success || !hasKey(obj, "success")):
		return nil
	case msg != "" || (status >= 200 && status < 300):
		return &portal.AppError{Status: status, Message: msg}
	default:
		return &portal.TransportError{Err: fmt.Errorf("%d %s", status, http.StatusText(status))}
	}
}

// first unwraps the single answer jsonpath sometimes returns as a list.
func first(v any, err error) any {
	if err != nil {
		return nil
	}
	if l, ok := v.([]any); ok && len(l) > 0 {
		return l[0]
	}
	return v
}

func hasKey(obj any, key string) bool {
	m, ok := obj.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// get decodes the whole successful body into out.
func (c *Client) get(ctx context.Context, p string, query url.Values, out any) ([]byte, error) {
	data, err := c.call(ctx, http.MethodGet, p, query, nil)
	if err != nil {
		return nil, err
	}
	return data, decode(http.MethodGet+" "+p, data, out)
}

// post sends in and decodes the whole successful body into out.
func (c *Client) post(ctx context.Context, p string, in, out any) error {
	data, err := c.call(ctx, http.MethodPost, p, nil, in)
	if err != nil {
		return err
	}
	return decode(http.MethodPost+" "+p, data, out)
}

// member decodes the member key of a successful GET into out. A missing
// member leaves out untouched.
func (c *Client) member(ctx context.Context, p string, query url.Values, key string, out any) error {
	data, err := c.call(ctx, http.MethodGet, p, query, nil)
	if err != nil {
		return err
	}
	var members map[string]json.RawMessage
	if err := decode(http.MethodGet+" "+p, data, &members); err != nil {
		return err
	}
	raw, ok := members[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	return decode(http.MethodGet+" "+p+" "+key, raw, out)
}

func decode(op string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &portal.TransportError{Op: op, Err: err}
	}
	return nil
}

// cacheBust is the query of table fetches; it defeats any cache on the way.
func (c *Client) cacheBust() url.Values {
	return url.Values{"_cb": {strconv.FormatInt(c.now().UnixMilli(), 10)}}
}
