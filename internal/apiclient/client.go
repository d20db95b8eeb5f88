// Package apiclient talks to the condo REST backend.  Every call is a single
// attempt: there are no retries and no backoff.
package apiclient

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

	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response.  Message comes from the {"error": "..."}
// body when the server sent one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: HTTP %d", e.Status)
	}
	return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Result is the outcome shown to the user for one fetch.
type Result struct {
	OK      bool
	Message string
}

// Failed is the Result shown for a failed call.
func Failed(err error) Result {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return Result{Message: ae.Message}
	}
	return Result{Message: err.Error()}
}

type Config struct {
	BaseURL string
	Timeout time.Duration // defaults to 10s
	Logger  zerolog.Logger

	// HTTPClient overrides the default client.  Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
	token  string
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{base: base, http: hc, logger: cfg.Logger}, nil
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("dur", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	ae := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(data, &body) == nil {
		ae.Code = body.Code
		ae.Message = body.Error
		if ae.Message == "" {
			ae.Message = body.Message
		}
	}
	if ae.Message == "" {
		ae.Message = strings.TrimSpace(http.StatusText(resp.StatusCode))
	}
	return ae
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}

// GetJSON issues an authenticated GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// Fetch GETs path and returns the list under key in the response envelope.
// A missing or null key yields an empty list.  On failure the returned
// Result carries the message to show and the list is nil.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values, key string) ([]map[string]any, Result, error) {
	var envelope map[string]json.RawMessage
	if err := c.GetJSON(ctx, path, query, &envelope); err != nil {
		return nil, Failed(err), err
	}

	out := []map[string]any{}
	raw, ok := envelope[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return out, Result{OK: true}, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		err = fmt.Errorf("decode %q list: %w", key, err)
		return nil, Failed(err), err
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, Result{OK: true}, nil
}
