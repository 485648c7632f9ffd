// Package service is the transport adapter for the ResearchRAG analysis service.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint  = "http://localhost:8000"
	DefaultTimeout   = 60 * time.Second
	defaultUserAgent = "researchrag/0.1"
	maxErrorBody     = 64 << 10
)

// ResponseKind selects how a response body is expected to be encoded.
type ResponseKind int

const (
	JSON ResponseKind = iota
	Binary
)

// Request describes one call against the analysis service.
type Request struct {
	// Op names the operation for logs and errors (eg. "upload").
	Op          string
	Method      string
	Path        string
	Body        io.Reader
	ContentType string
	Kind        ResponseKind
	// Fallback is the message shown when the service does not supply a detail.
	Fallback string
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests to the analysis service.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Config describes how to build a Client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the HTTP implementation of Transport.
type Client struct {
	base      string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// New returns a Client bound to a fixed base endpoint.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if base == "" {
		base = DefaultEndpoint
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		base:      base,
		userAgent: userAgent,
		client:    pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:    logger,
	}
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if custom != nil {
		if custom.Timeout == 0 {
			clone := *custom
			clone.Timeout = timeout
			return &clone
		}
		return custom
	}
	// Uploads are processed synchronously by the service, so this is the outer bound.
	return &http.Client{Timeout: timeout}
}

// Endpoint reports the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.base
}

// Send performs the request and reads the whole body. Non-2xx responses and network failures
// come back as *Error; nothing is retried.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	fallback := r.Fallback
	if fallback == "" {
		fallback = "Request failed"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+r.Path, r.Body)
	if err != nil {
		return nil, &Error{Op: r.Op, Kind: KindTransport, Message: fallback, Err: fmt.Errorf("create %s request: %w", r.Op, err)}
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Kind == JSON {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("service_request_failed", "op", r.Op, "method", method, "path", r.Path, "duration", time.Since(started), "error", err)
		return nil, &Error{Op: r.Op, Kind: KindTransport, Message: fallback, Err: fmt.Errorf("%s request: %w", r.Op, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("service_request_rejected", "op", r.Op, "method", method, "path", r.Path, "status", resp.StatusCode, "duration", time.Since(started))
		return nil, statusError(r.Op, resp, body, fallback)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: r.Op, Kind: KindTransport, Message: fallback, Err: fmt.Errorf("read %s response: %w", r.Op, err)}
	}
	c.logger.Debug("service_request", "op", r.Op, "method", method, "path", r.Path, "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(started))
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

func statusError(op string, resp *http.Response, body []byte, fallback string) *Error {
	message := fallback
	if detail := parseDetail(body); detail != "" {
		message = detail
	}
	raw := strings.TrimSpace(string(body))
	var cause error
	if raw == "" {
		cause = fmt.Errorf("%s status: %s", op, resp.Status)
	} else {
		cause = fmt.Errorf("%s status: %s: %s", op, resp.Status, raw)
	}
	return &Error{Op: op, Kind: KindService, StatusCode: resp.StatusCode, Message: message, Err: cause}
}

// parseDetail returns the "detail" field of an error body when it is a non-empty string.
func parseDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

// DecodeJSON decodes a JSON response body into out, reporting failures as service errors.
func DecodeJSON(op string, resp *Response, out any, fallback string) error {
	if resp == nil {
		return &Error{Op: op, Kind: KindService, Message: fallback, Err: fmt.Errorf("%s: empty response", op)}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &Error{Op: op, Kind: KindService, StatusCode: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode %s response: %w", op, err)}
	}
	return nil
}
