package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id stamped on every outgoing request.
const RequestIDHeader = "X-Request-ID"

// tracing logs every round trip and stamps a request id. It never caches:
// every view transition must reach the server.
type tracing struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (t *tracing) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		// RoundTrip must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration", time.Since(start),
	}
	if err != nil {
		t.log.Debug("request failed", append(attrs, "err", err)...)
		return nil, err
	}
	t.log.Debug("request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// newHTTPClient returns a client tracing through log. A zero timeout means
// none.
func newHTTPClient(log *slog.Logger, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &tracing{base: http.DefaultTransport, log: log},
		Timeout:   timeout,
	}
}
