package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// StatusError is an upstream HTTP error response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// Retryable reports whether retrying can help: server errors and 429 yes,
// other client errors no.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client issues JSON GET requests with a per-attempt timeout and a bounded
// retry count. Network-level failures and retryable status codes back off
// linearly (backoff * attempt number); other 4xx responses fail immediately.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a fetcher. timeout bounds each attempt, not the whole
// call; maxRetries counts re-issues after the first attempt.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
}

// FetchJSON GETs url with the given headers and decodes the body into out.
// After exhausting retries the last error is returned.
func (c *Client) FetchJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff, honoring caller cancellation.
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Printf("[upstream] retry %d/%d: %s", attempt, c.maxRetries, url)
		}

		err := c.fetchOnce(ctx, url, headers, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if statusErr, ok := err.(*StatusError); ok && !statusErr.Retryable() {
			return err
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}

// fetchOnce issues a single attempt with a fresh timeout context, so a timed
// out attempt never bleeds into the next retry.
func (c *Client) fetchOnce(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}
