// Package provider calls the generateContent endpoint of the external text-generation service.
package provider

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

	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// apiKeyHeader carries the credential so it never appears in a request URL.
const apiKeyHeader = "x-goog-api-key"

// Error reports a failed provider call. StatusCode is zero for transport failures.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("provider request failed: %v", e.Err)
	default:
		return "provider request failed"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Client sends prompts to the provider. It performs no retries.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient constructs a client for endpoint, authenticating with apiKey in the x-goog-api-key header.
func NewClient(endpoint, apiKey string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("provider endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse provider endpoint: %w", err)
	}
	// Per-call deadlines come from the caller's context.
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Call posts the prompt and returns the response body verbatim on a 2xx status.
func (c *Client) Call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &Error{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Err: redactURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("provider returned non-success status", "status", resp.StatusCode, "body", string(data))
		return "", &Error{StatusCode: resp.StatusCode, Body: string(data)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	return string(data), nil
}

// redactURLError masks query values on the failed URL. Endpoints configured with an inline
// credential would otherwise leak it into logs and the dead-letter table.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		urlErr.URL = "[REDACTED]"
		return err
	}
	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			q.Set(name, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	u.User = nil
	urlErr.URL = u.String()
	return err
}
