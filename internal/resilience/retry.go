// Package resilience retries failed downloads with exponential backoff.
// The WOA climatology pulls run over FTP against rate-capped NOAA
// mirrors, so a dropped connection mid-archive is routine rather than
// exceptional.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how many times a download is attempted and how
// long to wait between attempts.
type RetryConfig struct {
	// Attempts is the total number of tries, first included. Default 3.
	Attempts int

	// BaseDelay is the wait before the second attempt; it doubles each
	// retry. Default 1s.
	BaseDelay time.Duration

	// MaxDelay caps the doubling. Default 30s.
	MaxDelay time.Duration

	// ShouldRetry decides whether an error is worth another attempt.
	// Defaults to Retryable.
	ShouldRetry func(error) bool

	// OnRetry runs before each backoff sleep.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig is tuned for the NOAA and MarineRegions servers:
// three tries with one second of initial backoff rides out a dropped
// FTP data connection without hammering a server that is telling us to
// go away.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  3,
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
	}
}

// DoVal runs fn until it succeeds, the error is not retryable, or the
// attempts are spent. The value from the successful call is returned.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = Retryable
	}

	var zero T
	var lastErr error
	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(err) || attempt == cfg.Attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		// Half-jittered so parallel fetches against the same mirror do
		// not retry in lockstep.
		sleep := delay/2 + rand.N(delay/2+1)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs which download is
// being retried.
func RetryLogger(source, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying download",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
