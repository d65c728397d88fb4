package traq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Transient failures (network errors, 429, 5xx) are retried up to maxRetries
// times. The wait doubles from baseBackoff up to maxBackoff, give or take
// jitterFraction, unless a 429 names its own Retry-After.
const (
	maxRetries     = 5
	baseBackoff    = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
	jitterFraction = 0.25
)

// maxErrorBody caps how much of an error response is kept in an APIError.
const maxErrorBody = 64 << 10

// DefaultUserAgent is sent when the caller does not supply one.
const DefaultUserAgent = "qui/0.1"

// TokenSource yields the bearer token for each request attempt.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to one traQ server's v3 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string

	// sleepFunc waits out a retry backoff. Tests replace it.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "https://q.trap.jp/api/v3". A nil httpClient or logger selects the
// defaults, and an empty userAgent selects DefaultUserAgent.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger, userAgent string) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  userAgent,
		sleepFunc:  timeSleep,
	}
}

// Do sends method to baseURL+path and returns the 2xx response; the caller
// closes its body. A non-nil body is sent as JSON on every attempt. Any
// other status ends as an *APIError once retries, if it has any, run out.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	log := c.logger.With(slog.String("method", method), slog.String("path", path))

	for attempt := 0; ; attempt++ {
		resp, err := c.doOnce(ctx, method, c.baseURL+path, body)

		var wait time.Duration

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("traq: request canceled: %w", ctx.Err())
			}

			if attempt == maxRetries {
				return nil, fmt.Errorf("traq: %s %s failed after %d retries: %w", method, path, maxRetries, err)
			}

			wait = c.calcBackoff(attempt)
			log.Warn("network error, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)

		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
			log.Debug("request succeeded", slog.Int("status", resp.StatusCode))

			return resp, nil

		default:
			apiErr := readAPIError(resp)

			if !isRetryable(resp.StatusCode) || attempt == maxRetries {
				if attempt > 0 {
					log.Error("giving up after retries",
						slog.Int("status", resp.StatusCode),
						slog.Int("attempts", attempt+1),
					)
				}

				return nil, apiErr
			}

			wait = c.retryBackoff(resp, attempt)
			log.Warn("server busy, retrying",
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
			)
		}

		if err := c.sleepFunc(ctx, wait); err != nil {
			return nil, fmt.Errorf("traq: request canceled: %w", err)
		}
	}
}

// doOnce sends a single attempt with fresh auth headers.
func (c *Client) doOnce(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// readAPIError drains and closes a non-2xx response into an *APIError.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	msg, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		msg = []byte("(unreadable response body)")
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(msg)),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// retryBackoff prefers a 429's Retry-After seconds over computed backoff.
func (c *Client) retryBackoff(resp *http.Response, attempt int) time.Duration {
	if resp.StatusCode == http.StatusTooManyRequests {
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return c.calcBackoff(attempt)
}

// calcBackoff is baseBackoff*2^attempt, capped, with ±jitterFraction noise.
func (c *Client) calcBackoff(attempt int) time.Duration {
	backoff := math.Min(float64(baseBackoff)*math.Pow(backoffFactor, float64(attempt)), float64(maxBackoff))
	backoff += backoff * jitterFraction * (rand.Float64()*2 - 1) //nolint:gosec // jitter does not need crypto rand

	return time.Duration(backoff)
}

func timeSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
