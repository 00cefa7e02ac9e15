// ABOUTME: JSON HTTP client for the sales-automation REST API
// ABOUTME: Joins base URL and API prefix, attaches bearer auth, logs every attempt, and raises RequestError on non-2xx
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/salesseed/models"
)

// DefaultPrefix is the fixed path prefix of every API route.
const DefaultPrefix = "/api"

// Response is a successful API response.
type Response struct {
	Status int
	Body   json.RawMessage // nil for 204, empty, or non-JSON bodies
}

// Client issues API calls on behalf of one session. It is immutable;
// WithSession returns a copy bound to another session.
type Client struct {
	baseURL string
	prefix  string
	http    *http.Client
	log     *AccessLog
	session *models.Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *Client) { c.prefix = prefix }
}

// WithAccessLog sets the access logger shared by derived clients.
func WithAccessLog(l *AccessLog) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates an unauthenticated client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  DefaultPrefix,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = NewAccessLog(nil)
	}
	return c
}

// WithSession returns a copy of c that authenticates as s.
func (c *Client) WithSession(s *models.Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session returns the session attached to this client, or nil.
func (c *Client) Session() *models.Session {
	return c.session
}

// AccessLog returns the logger shared by this client and its copies.
func (c *Client) AccessLog() *AccessLog {
	return c.log
}

// URL returns the absolute URL for an API path.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + c.prefix + path
}

// Do performs one call. Non-2xx responses return a *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody []byte
	if body != nil && carriesBody(method) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reqBody = data
	}

	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Active() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Log(Call{Method: method, Path: path, Duration: time.Since(start), RequestBody: reqBody, Err: err})
		return nil, fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	call := Call{
		Method:       method,
		Path:         path,
		Status:       resp.StatusCode,
		Duration:     time.Since(start),
		RequestBody:  reqBody,
		ResponseBody: raw,
		Err:          err,
	}
	c.log.Log(call)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	parsed := decodeBody(resp.StatusCode, raw)
	if !call.Success() {
		return nil, &RequestError{Method: method, Path: path, Status: resp.StatusCode, Body: parsed}
	}
	return &Response{Status: resp.StatusCode, Body: parsed}, nil
}

// Call is Do returning only the parsed body.
func (c *Client) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// carriesBody reports whether a request method conventionally has a body.
func carriesBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return false
	}
	return true
}

func decodeBody(status int, raw []byte) json.RawMessage {
	if status == http.StatusNoContent {
		return nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return json.RawMessage(raw)
}
