// Package remote talks to a hosted PostgREST-style backend (such as a
// Supabase project) and exposes it as item and demand stores.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// Config configures a Client.
type Config struct {
	URL    string // project base URL; "/rest/v1" is appended
	APIKey string

	ItemsTable   string // default "tasks"
	AreasTable   string // default "areas"
	DemandsTable string // default "demands"

	RetryMax     int           // retries for idempotent reads
	RetryWaitMin time.Duration // default 200ms
	Timeout      time.Duration // per attempt, default 15s

	// Logger receives retry diagnostics. Nil discards them.
	Logger retryablehttp.LeveledLogger
}

// Client issues table requests. Reads are retried on transport errors and
// 5xx responses; writes are sent exactly once.
type Client struct {
	base   string
	apiKey string
	reads  *retryablehttp.Client
	writes *retryablehttp.Client
	cfg    Config
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote: %d: %s", e.Status, e.Message)
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote: invalid url %q", cfg.URL)
	}
	if cfg.ItemsTable == "" {
		cfg.ItemsTable = "tasks"
	}
	if cfg.AreasTable == "" {
		cfg.AreasTable = "areas"
	}
	if cfg.DemandsTable == "" {
		cfg.DemandsTable = "demands"
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 200 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		base:   u.String() + "/rest/v1/",
		apiKey: cfg.APIKey,
		reads:  newHTTPClient(cfg, cfg.RetryMax),
		writes: newHTTPClient(cfg, 0),
		cfg:    cfg,
	}, nil
}

func newHTTPClient(cfg Config, retryMax int) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retryMax
	c.RetryWaitMin = cfg.RetryWaitMin
	c.RetryWaitMax = 10 * cfg.RetryWaitMin
	c.HTTPClient.Timeout = cfg.Timeout
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Logger != nil {
		c.Logger = cfg.Logger
	} else {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return c
}

// request sends one table request and returns the response body. query may
// be nil. body, when non-nil, is sent as JSON.
func (c *Client) request(ctx context.Context, method, table string, query url.Values, body any) ([]byte, error) {
	target := c.base + url.PathEscape(table)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("remote: encode %s body: %w", table, err)
		}
	}

	var (
		req *retryablehttp.Request
		err error
	)
	if payload != nil {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, target, payload)
	} else {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, target, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	client := c.writes
	if method == http.MethodGet || method == http.MethodHead {
		client = c.reads
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read %s response: %w", table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func statusError(status int, body []byte) *StatusError {
	e := &StatusError{Status: status}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		e.Code = parsed.Get("code").String()
		e.Message = parsed.Get("message").String()
		if hint := parsed.Get("hint").String(); hint != "" {
			e.Message += " (" + hint + ")"
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// eq builds a PostgREST equality filter value.
func eq(v string) string { return "eq." + v }

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
