// Package retry provides fixed-schedule retry logic for connection
// attempts. Unlike open-ended exponential backoff, the delay sequence is an
// explicit schedule: attempt n sleeps schedule[n] before running, and once
// the schedule is exhausted the last entry repeats. A zero MaxAttempts
// retries without ceiling, which is the policy for re-establishing an
// existing stream.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NonRetryableError wraps errors that should not be retried.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable checks if an error is marked as non-retryable.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}

// DefaultSchedule is the connection backoff schedule: the first attempt
// runs immediately, the next two wait a second, and everything after waits
// five seconds.
var DefaultSchedule = []time.Duration{
	0,
	1 * time.Second,
	1 * time.Second,
	5 * time.Second,
}

// Config provides retry configuration.
type Config struct {
	// MaxAttempts is the total number of attempts. 0 means no ceiling.
	MaxAttempts int
	// Schedule holds the delay before each attempt, indexed by attempt
	// number. When attempts outnumber entries the last entry repeats.
	// Empty means DefaultSchedule.
	Schedule []time.Duration
}

// Bounded returns the policy for brand-new stream connections: three
// attempts on the default schedule.
func Bounded() Config {
	return Config{MaxAttempts: 3, Schedule: DefaultSchedule}
}

// Unbounded returns the policy for re-establishing an existing stream:
// retry forever on the default schedule.
func Unbounded() Config {
	return Config{MaxAttempts: 0, Schedule: DefaultSchedule}
}

// DelayFor returns the delay to sleep before the given zero-based attempt.
func (c Config) DelayFor(attempt int) time.Duration {
	schedule := c.Schedule
	if len(schedule) == 0 {
		schedule = DefaultSchedule
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(schedule) {
		attempt = len(schedule) - 1
	}
	return schedule[attempt]
}

// Do executes fn per the schedule until it succeeds, returns a
// non-retryable error, the attempt ceiling is reached, or ctx is done.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; cfg.MaxAttempts == 0 || attempt < cfg.MaxAttempts; attempt++ {
		if err := sleep(ctx, cfg.DelayFor(attempt)); err != nil {
			if lastErr != nil {
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, errors.Join(err, lastErr))
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt+1, errors.Join(ctx.Err(), lastErr))
		}
	}
	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}

// sleep waits for d respecting context cancellation. A zero delay checks
// the context without arming a timer.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
