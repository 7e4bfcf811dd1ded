// Package sheets is a thin, retrying client for the range-addressable
// spreadsheet values API. It carries no planning logic: it authenticates,
// issues requests, classifies failures and retries the transient ones.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"plansheet/internal/metrics"
)

// DefaultBaseURL is the production spreadsheet API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

const (
	// maxAttempts bounds a single logical call: one initial attempt plus
	// two retries. Exhausting them surfaces the last error unchanged.
	maxAttempts = 3

	// defaultRetryBase is the unit for the linear backoff schedule:
	// attempt n waits n * base before retrying. No jitter; the observed
	// per-user request rate makes synchronized retries a non-issue.
	defaultRetryBase = time.Second
)

// Operation names recorded against the metrics collector.
const (
	OpReadRange  = "read_range"
	OpWriteRange = "write_range"
	OpAppendRows = "append_rows"
	OpMetadata   = "metadata"
)

// Client talks to the remote tabular API on behalf of one user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retryBase  time.Duration
	logger     *slog.Logger
	collector  *metrics.Collector
}

// Options configures optional client behavior.
type Options struct {
	// BaseURL overrides DefaultBaseURL; used by tests and self-hosted
	// proxies.
	BaseURL string

	// HTTPClient overrides the default client (30s wall timeout per
	// attempt).
	HTTPClient *http.Client

	// RetryBase overrides the linear backoff unit.
	RetryBase time.Duration

	// Collector receives per-operation timings and attempt counts.
	Collector *metrics.Collector
}

// NewClient creates a client with the given token source.
// If logger is nil, slog.Default() is used.
func NewClient(tokens TokenSource, logger *slog.Logger, opts Options) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		retryBase:  defaultRetryBase,
		logger:     logger,
		collector:  opts.Collector,
	}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		c.httpClient = opts.HTTPClient
	}
	if opts.RetryBase > 0 {
		c.retryBase = opts.RetryBase
	}
	return c
}

// ReadRange fetches the cell values of rangeExpr (A1 notation, may be
// prefixed with a quoted worksheet name) from the given spreadsheet.
func (c *Client) ReadRange(ctx context.Context, resourceID, rangeExpr string) (Grid, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, url.PathEscape(resourceID), url.PathEscape(rangeExpr))

	var out ValueRange
	if err := c.do(ctx, OpReadRange, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// WriteRange overwrites rangeExpr with the given values.
func (c *Client) WriteRange(ctx context.Context, resourceID, rangeExpr string, values Grid) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(resourceID), url.PathEscape(rangeExpr))

	body := ValueRange{Range: rangeExpr, Values: values}
	return c.do(ctx, OpWriteRange, http.MethodPut, endpoint, &body, nil)
}

// AppendRows appends values after the last data row of rangeExpr.
func (c *Client) AppendRows(ctx context.Context, resourceID, rangeExpr string, values Grid) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(resourceID), url.PathEscape(rangeExpr))

	body := ValueRange{Values: values}
	return c.do(ctx, OpAppendRows, http.MethodPost, endpoint, &body, nil)
}

// Metadata returns the spreadsheet title and its worksheet names.
func (c *Client) Metadata(ctx context.Context, resourceID string) (*ResourceMetadata, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=properties.title,sheets.properties.title",
		c.baseURL, url.PathEscape(resourceID))

	var out resourceResponse
	if err := c.do(ctx, OpMetadata, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.metadata(), nil
}

// linearBackOff waits attempt * base between retries.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.base
}

func (l *linearBackOff) Reset() { l.attempt = 0 }

// do runs one logical API call with the retry policy. The token is
// fetched fresh on every attempt so a refreshing source keeps working
// through a long backoff. Non-retryable failures are wrapped as
// permanent so backoff stops immediately.
func (c *Client) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	start := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrUnauthenticated, err))
		}
		if token == "" {
			return backoff.Permanent(ErrUnauthenticated)
		}
		if err := c.attempt(ctx, method, endpoint, token, in, out); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Retryable() {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: c.retryBase}, maxAttempts-1), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying sheets request",
			"op", op, "attempt", attempts, "wait", wait, "error", err)
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if c.collector != nil {
		c.collector.RecordRequest(op, time.Since(start), attempts, err != nil)
	}
	return err
}

// attempt performs exactly one HTTP round trip.
func (c *Client) attempt(ctx context.Context, method, endpoint, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	switch {
	case resp.StatusCode == 401:
		return ErrUnauthenticated
	case resp.StatusCode >= 400:
		return classifyStatus(resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
