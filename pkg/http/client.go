package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the service's JSON API and unwraps the response envelope.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResponseError is a non-2xx envelope. Details holds the messages of the
// field or application errors carried in data.
type ResponseError struct {
	Status  int
	Message string
	Details []string
}

func (e *ResponseError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Message, strings.Join(e.Details, "; "))
}

// Do sends body as JSON (nil sends none) and returns the envelope's data.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &ResponseError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &ResponseError{Status: resp.StatusCode, Message: env.Message}
		var details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Data, &details) == nil {
			for _, d := range details {
				rerr.Details = append(rerr.Details, d.Message)
			}
		}
		return nil, rerr
	}
	return env.Data, nil
}
