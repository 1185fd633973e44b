// Package httputil provides HTTP utilities for package registry clients.
//
// # Retry
//
// [Retry] wraps registry requests with automatic retry for transient
// failures. Callers mark an error as transient by wrapping it in
// [RetryableError]; registry clients do this for:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after each failed attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// [RetryWithBackoff] applies the defaults used by every registry client:
// 3 attempts with a 1 second initial delay.
package httputil
