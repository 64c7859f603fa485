package tracker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
)

// RetryConfig configures backoff for transient GitHub API failures. Retrying
// here is a transport concern; the commands above this client never retry.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// retryOperation runs a GitHub API call, retrying transient errors with
// exponential backoff. Rate-limit responses wait until the reported reset
// time instead of the computed backoff.
func retryOperation(ctx context.Context, cfg *RetryConfig, logger *zap.Logger, op func() (*github.Response, error)) (*github.Response, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	var lastResp *github.Response
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := op()
		if err == nil {
			return resp, nil
		}

		lastErr = err
		lastResp = resp

		if !isRetryable(err, resp) {
			return resp, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff
		if isRateLimited(resp) {
			wait = rateLimitBackoff(resp, cfg.MaxBackoff)
		}
		logger.Warn("retrying GitHub API call after transient error",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.MaxRetries+1),
			zap.Int("status_code", statusCode(resp)),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("operation canceled: %w", ctx.Err())
		case <-time.After(wait):
			backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	return lastResp, fmt.Errorf("GitHub API call failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

// isRetryable classifies an API failure. Rate limits and 5xx responses are
// retryable; client errors are not. Without a status code the failure is
// assumed to be a network error and retried.
func isRetryable(err error, resp *github.Response) bool {
	if err == nil {
		return false
	}
	code := statusCode(resp)
	if code == 0 {
		return true
	}

	switch code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		// 403 with rate headers is a secondary rate limit.
		return resp.Rate.Limit > 0
	}
	return code >= 500 && code < 600
}

func isRateLimited(resp *github.Response) bool {
	code := statusCode(resp)
	if code == http.StatusTooManyRequests {
		return true
	}
	return code == http.StatusForbidden && resp.Rate.Limit > 0
}

// rateLimitBackoff waits until the reported rate-limit reset, with a one
// second buffer, capped at maxBackoff.
func rateLimitBackoff(resp *github.Response, maxBackoff time.Duration) time.Duration {
	if resp == nil || (resp.Rate.Limit == 0 && resp.Rate.Remaining == 0) {
		return time.Minute
	}

	wait := time.Until(resp.Rate.Reset.Time) + time.Second
	if wait < 0 {
		wait = time.Second
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

func statusCode(resp *github.Response) int {
	if resp != nil && resp.Response != nil {
		return resp.Response.StatusCode
	}
	return 0
}
