// Package api is the authenticated JSON fetcher for the LearnSphere HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"learnsphere/internal/logger"
	"learnsphere/internal/service"
	"learnsphere/internal/session"
)

// RequestIDHeader carries the per-call correlation ID.
const RequestIDHeader = "X-Request-ID"

// Client performs JSON calls against a fixed base URL.
// There are no retries; failures are logged and returned.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	guard   *session.Guard
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL whose protected calls are gated by guard.
func New(baseURL string, guard *session.Guard, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "learnsphere"},
		guard:   guard,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// Guard returns the session guard gating protected calls.
func (c *Client) Guard() *session.Guard {
	return c.guard
}

// Do performs a protected call. Without a session it returns
// service.ErrMissingSession and performs no network I/O. A 401 response
// invalidates the session. body and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	h := c.guard.Header()
	if len(h) == 0 {
		return service.ErrMissingSession
	}
	return c.send(ctx, method, path, h, body, out, true)
}

// DoPublic performs an unauthenticated call (login, signup).
func (c *Client) DoPublic(ctx context.Context, method, path string, body, out any) error {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return c.send(ctx, method, path, h, body, out, false)
}

func (c *Client) send(ctx context.Context, method, path string, h http.Header, body, out any, protected bool) error {
	reqID := uuid.NewString()
	ctx = logger.ContextWithRequestID(ctx, reqID)
	log := logger.WithRequestID(ctx, c.logger).With(zap.String("method", method), zap.String("path", path))

	if err := ctx.Err(); err != nil {
		return service.WrapError(service.CodeNetwork, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	req.SetRequestURI(c.URL(path))
	req.Header.SetMethod(method)
	for key := range h {
		req.Header.Set(key, h.Get(key))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fasthttp.ReleaseRequest(req)
			return service.WrapError(service.CodeInvalid, "failed to encode request", err)
		}
		req.SetBody(data)
	}

	log.Debug("request")
	status, payload, err := c.exchange(ctx, req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return service.WrapError(service.CodeNetwork, "network error", err)
	}

	switch {
	case status == fasthttp.StatusUnauthorized && protected:
		log.Warn("session rejected by server")
		c.guard.Invalidate()
		return &service.Error{Code: service.CodeUnauthorized, Status: status, Message: "session expired"}
	case status == fasthttp.StatusServiceUnavailable:
		log.Warn("service unavailable")
		return &service.Error{Code: service.CodeUnavailable, Status: status, Message: serverMessage(payload)}
	case status < 200 || status > 299:
		msg := serverMessage(payload)
		log.Warn("request rejected", zap.Int("status", status), zap.String("message", msg))
		return &service.Error{Code: service.CodeBackend, Status: status, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		log.Warn("empty response body")
		return service.NewError(service.CodeMalformed, "empty response")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Warn("malformed response", zap.Error(err))
		return service.WrapError(service.CodeMalformed, "malformed response", err)
	}
	log.Debug("response", zap.Int("status", status))
	return nil
}

type reply struct {
	status int
	body   []byte
	err    error
}

// exchange sends req and takes ownership of it. Cancelling ctx abandons the
// call; the in-flight request is released once fasthttp returns.
func (c *Client) exchange(ctx context.Context, req *fasthttp.Request) (int, []byte, error) {
	done := make(chan reply, 1)
	go func() {
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)
		defer fasthttp.ReleaseRequest(req)

		err := c.roundTrip(ctx, req, resp)
		done <- reply{status: resp.StatusCode(), body: append([]byte(nil), resp.Body()...), err: err}
	}()

	select {
	case r := <-done:
		return r.status, r.body, r.err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (c *Client) roundTrip(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline, ok := ctx.Deadline()
	if c.timeout > 0 {
		if d := time.Now().Add(c.timeout); !ok || d.Before(deadline) {
			deadline, ok = d, true
		}
	}
	if ok {
		return c.http.DoDeadline(req, resp, deadline)
	}
	return c.http.Do(req, resp)
}

// serverMessage extracts {"message": "..."} or {"error": "..."} from a body.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
