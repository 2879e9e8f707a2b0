// Package cloud is a thin client for the Saleor Cloud REST API.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/telemetry"
)

// Sentinel errors for API failures.
var (
	ErrUnreachable  = errors.New("cloud API unreachable")
	ErrUnauthorized = errors.New("cloud API rejected the credentials")
	ErrNotLoggedIn  = errors.New("not logged in")
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Detail extracts the server's message from the body when it has the usual
// {"detail": "..."} shape, and falls back to the raw body.
func (e *APIError) Detail() string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(e.Body)
}

// Category classifies rejected credentials as an authentication failure.
func (e *APIError) Category() clierr.Category {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return clierr.CategoryAuthentication
	}
	return ""
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 and 403 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Category() == clierr.CategoryAuthentication
}

// Client talks to the cloud API with token authentication.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates an API client. token may be empty for unauthenticated calls.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: "saleor-cli",
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.token = token
	return &out
}

// HasToken reports whether the client carries a credential.
func (c *Client) HasToken() bool { return c.token != "" }

// Do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(ctx, req, body != nil)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return classifyError(method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return clierr.Configuration("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	id := telemetry.CorrelationID(ctx)
	if id == "" {
		id = ulid.Make().String()
	}
	req.Header.Set("X-Request-ID", id)
}

// classifyError converts transport failures into connectivity errors.
func classifyError(method, path string, err error) error {
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return &clierr.Error{
			Kind:        clierr.CategoryConnectivity,
			Err:         fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err),
			Remediation: "check your network connection and retry",
		}
	default:
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
}

// requireToken guards calls that need a logged-in user.
func (c *Client) requireToken() error {
	if c.token == "" {
		return clierr.Authentication("%w", ErrNotLoggedIn).WithHint("run `saleor login`")
	}
	return nil
}
