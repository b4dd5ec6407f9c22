// Package ingest loads grade rows into storage from published grade
// reports: CSV exports (optionally gzipped) and HTML report tables, read
// from local files or fetched over HTTP.
package ingest

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"time"

	"github.com/corpix/uarand"

	apperrors "github.com/gradelens/gradelens-go/internal/errors"
)

// Client fetches report documents over HTTP with retry and backoff.
type Client struct {
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a fetch client. maxRetries counts retries after the
// first attempt.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries: maxRetries,
	}
}

// Get fetches url and returns the response body. Server errors and rate
// limits are retried with exponential backoff and jitter; client errors are
// permanent. The caller closes the returned reader.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	var body io.ReadCloser
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "text/html,text/csv,application/xhtml+xml,*/*;q=0.8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = apperrors.NewIngestError(url, 0, err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = wrapBody(resp)
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = apperrors.NewIngestError(url, resp.StatusCode, fmt.Errorf("server error"))
		default:
			// 4xx other than 429 will not get better on retry.
			_ = resp.Body.Close()
			return nil, apperrors.NewIngestError(url, resp.StatusCode, fmt.Errorf("client error"))
		}
	}

	return nil, lastErr
}

// sleepWithBackoff waits initial*2^(attempt-1) with up to 25% jitter.
func sleepWithBackoff(ctx context.Context, attempt int) error {
	const initial = time.Second
	const max = 30 * time.Second

	delay := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if delay > max {
		delay = max
	}
	if quarter := int64(delay) / 4; quarter > 0 {
		if jitter, err := rand.Int(rand.Reader, big.NewInt(quarter)); err == nil {
			delay += time.Duration(jitter.Int64())
		}
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
