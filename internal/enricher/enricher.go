// Package enricher calls the external detail-lookup API to augment queue
// items with additional fields.
package enricher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/riverline/enrichd/internal/message"
	"github.com/riverline/enrichd/internal/metrics"
)

// FailureKind categorizes why an enrichment call returned no result.
type FailureKind string

// Failure categories. Every one of them is soft: the caller drops the item
// and moves on, never aborting the consumer loop.
const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureBadBody   FailureKind = "bad_body"
)

// Error is a categorized enrichment failure for one URL.
type Error struct {
	Kind FailureKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enrich %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client issues bounded-timeout detail lookups over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	logger   *zap.Logger
}

// New constructs a Client for the configured endpoint. The timeout bounds
// each individual request; there is no retry within a call.
func New(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
		logger:   logger,
	}
}

// Enrich POSTs {"url": <link>} to the detail API and returns the non-empty
// JSON object from a 2xx response. All failures come back as *Error with a
// distinguishable kind; a timeout is reported, not propagated as a crash.
func (c *Client) Enrich(ctx context.Context, link string) (message.Item, error) {
	start := time.Now()
	result, err := c.call(ctx, link)
	if err != nil {
		var enrichErr *Error
		if errors.As(err, &enrichErr) {
			metrics.ObserveEnrichment(string(enrichErr.Kind), time.Since(start))
			switch enrichErr.Kind {
			case FailureTimeout:
				c.logger.Error("detail API request timed out", zap.String("url", link))
			default:
				c.logger.Error("detail API request failed",
					zap.String("url", link),
					zap.String("kind", string(enrichErr.Kind)),
					zap.Error(enrichErr.Err),
				)
			}
		}
		return nil, err
	}
	metrics.ObserveEnrichment("success", time.Since(start))
	return result, nil
}

func (c *Client) call(ctx context.Context, link string) (message.Item, error) {
	body, err := json.Marshal(map[string]string{"url": link})
	if err != nil {
		return nil, &Error{Kind: FailureTransport, URL: link, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: FailureTransport, URL: link, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(reqCtx, err), URL: link, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Kind: FailureStatus,
			URL:  link,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(reqCtx, err), URL: link, Err: err}
	}

	var result message.Item
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &Error{Kind: FailureBadBody, URL: link, Err: err}
	}
	// "null" unmarshals into a nil map with no error; it carries no
	// enrichment, and neither does "{}".
	if len(result) == 0 {
		return nil, &Error{Kind: FailureBadBody, URL: link, Err: errors.New("response has no fields")}
	}
	return result, nil
}

// classifyTransport separates the request deadline expiring from other
// transport failures (refused connections, DNS errors, resets).
func classifyTransport(ctx context.Context, err error) FailureKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	return FailureTransport
}
