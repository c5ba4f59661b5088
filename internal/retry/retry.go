// Package retry provides a retry mechanism with linear backoff for
// network fetches and webhook deliveries.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultInterval    = 2 * time.Second
	defaultMaxWait     = 30 * time.Second
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts int           // Maximum number of attempts (default: 5)
	Interval    time.Duration // Backoff unit; attempt n waits n*Interval (default: 2s)
	MaxWait     time.Duration // Upper bound on a single wait (default: 30s)
}

// Do executes fn until it succeeds, the error is non-retryable, the
// attempt budget is spent, or the context is cancelled. The wait before
// attempt n+1 is n*Interval (linear backoff).
func Do(ctx context.Context, fn func() error, cfg Config) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		wait := time.Duration(attempt) * cfg.Interval
		if wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// reStatusCode extracts the HTTP status code our fetchers embed in
// error messages ("unexpected status 503", "webhook returned status 403").
var reStatusCode = regexp.MustCompile(`\bstatus ([1-9]\d\d)\b`)

// IsRetryable classifies an error. Structural checks come first
// (cancellation, network timeouts); for errors that only carry a
// message, timeouts, connection failures, rate limits and 5xx
// responses are retryable while client errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "context canceled") {
		return false
	}

	if m := reStatusCode.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code == 429 || code >= 500
	}

	retryable := []string{
		"deadline exceeded",
		"timeout",
		"timed out",
		"connection refused",
		"connection reset",
		"temporary",
		"eof",
		"too many requests",
		"rate limit",
		"network",
	}
	for _, pattern := range retryable {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	// Unknown errors are not retried.
	return false
}
