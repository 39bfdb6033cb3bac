package engine

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds retries for upstream calls outside the watch-page fetcher.
type RetryPolicy struct {
	MaxTries    uint // total attempts, first one included
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetry keeps retry chains short: every pipeline stage has a fallback.
var DefaultRetry = RetryPolicy{
	MaxTries:    3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     4 * time.Second,
}

// Retry calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx ends.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	op := func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		v, err := fn()
		if err != nil && !isRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialWait
	bo.MaxInterval = p.MaxWait

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(max(p.MaxTries, 1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Debug("engine: retrying", slog.Duration("wait", wait), slog.Any("error", err))
		}),
	)
}

// RetryHTTP is Retry for request functions: a retryable status closes the
// body and counts as a failed attempt. Other statuses are returned to the caller.
func RetryHTTP(ctx context.Context, p RetryPolicy, fn func() (*http.Response, error)) (*http.Response, error) {
	return Retry(ctx, p, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

// HTTPStatusError reports an unexpected upstream HTTP status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return "http status " + http.StatusText(e.StatusCode)
}

// isRetryable reports transient failures: retryable statuses, dial and DNS
// errors, timeouts.
func isRetryable(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isRetryableStatus(statusErr.StatusCode)
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
