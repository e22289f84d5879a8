package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
	// Retryable decides whether an error is worth another attempt.
	// Nil retries everything except context cancellation.
	Retryable func(error) bool
}

// Do executes fn with exponential back-off retry logic.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !r.retryable(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
					operationName, attempt, attempts, lastErr, delay)
			}
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func (r *RetryConfig) retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if r.Retryable == nil {
		return true
	}
	return r.Retryable(err)
}
