package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/apperr"
)

// ErrorHook receives every failed call. The admin console uses it to show
// the generic error dialog.
type ErrorHook func(*apperr.Error)

// Client talks to the wedding backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	adminToken string
	log        zerolog.Logger
	onError    ErrorHook
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc for every request; hc itself is left
// untouched. The copy gets a cookie jar when hc has none, since the public
// handshake relies on cookies. A nil hc is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout bounds every request, whatever the order of the options
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithAdminToken sets the token sent on /api/admin calls
func WithAdminToken(token string) Option {
	return func(c *Client) { c.adminToken = token }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "API").Logger() }
}

// WithErrorHook registers the callback fired for each failed call
func WithErrorHook(hook ErrorHook) Option {
	return func(c *Client) { c.onError = hook }
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c
}

// BaseURL returns the backend root this client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one JSON request. in may be nil; out may be nil when the
// response body is not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	err := c.roundTrip(ctx, method, path, query, in, out)
	if err != nil {
		if e, ok := apperr.As(err); ok {
			c.log.Debug().
				Str("method", method).
				Str("path", path).
				Str("kind", string(e.Kind)).
				Int("status", e.Status).
				Str("detail", e.TechnicalDetail).
				Msg("Request failed")
			if c.onError != nil {
				c.onError(e)
			}
		}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.Decode(fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperr.Network(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" && strings.HasPrefix(path, "/api/admin/") {
		req.Header.Set("Authorization", "Token "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Network(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.HTTP(resp.StatusCode, errorMessage(raw), fmt.Sprintf("%s %s: %s", method, path, truncate(raw, 512)))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Decode(fmt.Errorf("%s %s: %w", method, path, err))
	}
	return nil
}

// errorMessage extracts the human readable part of an error body. The
// backend uses "error", "detail" or "message" depending on the view.
func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
