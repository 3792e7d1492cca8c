// Package registry checks medication names against an external drug
// registry over HTTP. Lookups are advisory: a failed lookup is reported to
// the practitioner but never blocks the report.
package registry

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
	"unicode/utf8"

	"github.com/juju/ratelimit"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultRate    = 2.0

	maxBodySize = 5 * 1024 * 1024
)

var (
	// ErrNotFound is returned when the registry answers with an empty payload
	ErrNotFound = errors.New("medication not found in registry")

	// ErrThrottled is wrapped in a ConnectionError when the outbound budget is exhausted
	ErrThrottled = errors.New("registry lookups throttled")
)

// APIError reports a registry response that is not a usable success
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("registry returned status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a lookup that never got a response: transport
// failure, timeout or local throttling.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("registry connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ValidationInfo is the registry answer for a validated medication
type ValidationInfo struct {
	Name    string          `json:"name"`
	Matches int             `json:"matches"`
	Payload json.RawMessage `json:"payload"`
}

// Config configures a registry Client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Rate is the number of lookups allowed per second
	Rate       float64
	HTTPClient *http.Client
}

// Client queries the registry with GET <base>?nom=<name>
type Client struct {
	baseURL *url.URL
	apiKey  string
	timeout time.Duration
	http    *http.Client
	bucket  *ratelimit.Bucket
}

// NewClient builds a client for cfg.BaseURL
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid registry URL %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	capacity := int64(rate)
	if capacity < 1 {
		capacity = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: u,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    httpClient,
		bucket:  ratelimit.NewBucketWithRate(rate, capacity),
	}, nil
}

// Validate looks name up in the registry. It returns ErrNotFound for an
// empty payload, an *APIError for a non-2xx status and a *ConnectionError
// when no response arrived within the timeout.
func (c *Client) Validate(ctx context.Context, name string) (*ValidationInfo, error) {
	name = strings.TrimSpace(name)

	if c.bucket.TakeAvailable(1) == 0 {
		return nil, &ConnectionError{Err: ErrThrottled}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.baseURL
	q := u.Query()
	q.Set("nom", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	payload, err := decodeBody(body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: err}
	}

	matches := countMatches(payload)
	if matches == 0 {
		return nil, ErrNotFound
	}

	return &ValidationInfo{Name: name, Matches: matches, Payload: payload}, nil
}

// decodeBody returns the body as UTF-8 JSON. Some registries still answer
// in ISO-8859-1, which is converted first.
func decodeBody(body []byte) (json.RawMessage, error) {
	if !utf8.Valid(body) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ISO-8859-1 body: %w", err)
		}
		body = decoded
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, errors.New("response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

// countMatches counts the records in payload: the length of an array, one
// for any other non-empty value, zero for null, "" and {}.
func countMatches(payload json.RawMessage) int {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return 0
	}

	switch t := v.(type) {
	case nil:
		return 0
	case []any:
		return len(t)
	case map[string]any:
		if len(t) == 0 {
			return 0
		}
		return 1
	case string:
		if strings.TrimSpace(t) == "" {
			return 0
		}
	}
	return 1
}
