package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/store"
)

// RetryPolicy retries an operation with exponential backoff. Only failures
// classified as network errors are retried; rejections and validation
// errors surface immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	Jitter      float64

	// sleep is a test hook; nil means a context-aware real sleep.
	sleep func(ctx context.Context, d time.Duration)
}

// DefaultRetryPolicy matches the lifecycle contract: 3 attempts, 1s base
// delay, factor 2, jitter ±10%.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Factor:      2,
		Jitter:      0.1,
	}
}

// Do runs fn until it succeeds, fails with a non-network error, or the
// attempt budget is spent. The last error is returned unwrapped so callers
// can still classify it.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, op string, fn func() error) error {
	delay := p.BaseDelay
	var err error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !store.IsNetwork(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := jittered(delay, p.Jitter)
		log.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Network failure, retrying")

		p.pause(ctx, wait)
		delay = time.Duration(float64(delay) * p.Factor)

		if ctx.Err() != nil {
			return err
		}
	}

	return err
}

func (p RetryPolicy) pause(ctx context.Context, d time.Duration) {
	if p.sleep != nil {
		p.sleep(ctx, d)
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// jittered spreads d by ±fraction to avoid synchronized retries.
func jittered(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	spread := (rand.Float64()*2 - 1) * fraction
	return time.Duration(float64(d) * (1 + spread))
}
