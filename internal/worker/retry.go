package worker

import (
	"context"
	"math"
	"time"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Do runs op up to 1+MaxRetries times with backoff between attempts.
// It returns the attempt count alongside the final error, and stops
// early when the context is done.
func (r RetryPolicy) Do(ctx context.Context, op func() error) (int, error) {
	attempts := 0
	var err error
	for attempt := 1; attempt <= r.MaxRetries+1; attempt++ {
		attempts = attempt
		if err = op(); err == nil {
			return attempts, nil
		}
		if attempt > r.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(r.NextDelay(attempt)):
		}
	}
	return attempts, err
}
