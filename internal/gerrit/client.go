// Package gerrit is a small REST client for a Gerrit-compatible review service.
package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joescharf/gr/internal/config"
)

// MagicPrefix is the anti-XSSI line the service prepends to every JSON body.
const MagicPrefix = ")]}'"

// Logger receives a line for every request issued.
type Logger interface {
	VerboseLog(format string, a ...any)
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error response: %s", strings.TrimSpace(e.Body))
}

// Client issues authenticated requests against baseURL (e.g. https://host/a).
type Client struct {
	baseURL string
	auth    config.Auth
	http    *http.Client
	logger  Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger logs every request through l.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for baseURL authenticating with auth.
func NewClient(baseURL string, auth config.Auth, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every endpoint path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// BaseURLForHost returns the authenticated API root for host.
func BaseURLForHost(host string) string {
	return "https://" + host + "/a"
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return Decode(body, out)
}

// GetText issues a GET and returns the raw body untouched.
func (c *Client) GetText(ctx context.Context, path string, query url.Values) (string, error) {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Post sends in as JSON and decodes the JSON response into out. Either may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	return Decode(body, out)
}

// Put sends in as JSON and decodes the JSON response into out. Either may be nil.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	body, err := c.do(ctx, http.MethodPut, path, nil, in)
	if err != nil {
		return err
	}
	return Decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	if c.auth.User != "" {
		req.SetBasicAuth(c.auth.User, c.auth.Password)
	}

	if c.logger != nil {
		c.logger.VerboseLog("%s %s", method, u)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: method, URL: u, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// StripPrefix removes the leading magic-prefix line from a response body.
func StripPrefix(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte(MagicPrefix)) {
		return body
	}
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		return body[i+1:]
	}
	return nil
}

// Decode strips the magic prefix and unmarshals the JSON payload into out.
// A nil out or an empty payload is not an error.
func Decode(body []byte, out any) error {
	payload := bytes.TrimSpace(StripPrefix(body))
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
