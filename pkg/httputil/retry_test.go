package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryableError(t *testing.T) {
	base := errors.New("connection reset")
	err := Retryable(base)

	if !IsRetryable(err) {
		t.Error("Retryable() result should be retryable")
	}
	if !errors.Is(err, base) {
		t.Error("RetryableError should unwrap to the cause")
	}
	if err.Error() != "connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(base) {
		t.Error("plain errors are not retryable")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", err)) {
		t.Error("wrapping should preserve retryability")
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		retryable bool
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, true, 3, 1, false},
		{"success after retries", 2, true, 3, 3, false},
		{"exhausted", 5, true, 3, 3, true},
		{"non-retryable stops", 5, false, 3, 1, true},
		{"zero attempts runs once", 0, true, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errors.New("transient"))
					}
					return errors.New("permanent")
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
