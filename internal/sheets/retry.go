package sheets

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Retry policy for the Google endpoints: transient statuses and network
// timeouts get exponential backoff with jitter, honoring Retry-After.
// Anything else fails fast.
const (
	maxAttempts = 4
	baseDelay   = 500 * time.Millisecond
	maxDelay    = 8 * time.Second
)

// doWithRetry executes a request built by buildReq, retrying transient
// failures. It always reads the full body so the connection can be
// reused. Returns the final status code and body.
func doWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
) (int, []byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return 0, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if !isRetryableNetErr(err) || attempt == maxAttempts {
				return 0, nil, err
			}

			lastErr = err

			if err := sleepBackoff(ctx, attempt, 0); err != nil {
				return 0, nil, err
			}

			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			if !isRetryableNetErr(readErr) || attempt == maxAttempts {
				return resp.StatusCode, body, readErr
			}

			lastErr = readErr

			if err := sleepBackoff(ctx, attempt, 0); err != nil {
				return 0, nil, err
			}

			continue
		}

		if !isRetryableStatus(resp.StatusCode) || attempt == maxAttempts {
			return resp.StatusCode, body, nil
		}

		lastErr = errors.New("retryable status " + strconv.Itoa(resp.StatusCode))

		if err := sleepBackoff(ctx, attempt, parseRetryAfter(resp)); err != nil {
			return 0, nil, err
		}
	}

	return 0, nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		(code >= 500 && code <= 599)
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

func sleepBackoff(ctx context.Context, attempt int, retryAfter time.Duration) error {
	sleep := retryAfter
	if sleep <= 0 {
		sleep = baseDelay * time.Duration(1<<(attempt-1))
		if sleep > maxDelay {
			sleep = maxDelay
		}

		// jitter 0..300ms
		sleep += time.Duration(rand.Intn(300)) * time.Millisecond
	}

	t := time.NewTimer(sleep)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseRetryAfter parses a Retry-After header (seconds or HTTP date).
// Returns 0 when missing or invalid.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}

func snippet(b []byte) string {
	const max = 300

	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}

	return s[:max] + "..."
}
