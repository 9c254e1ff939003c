package scheduler

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/i474232898/canilaba/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used when the scheduler is created without one.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 2 * time.Second,
	MaxInterval:     30 * time.Second,
}

var errInvalidBackoff = errors.New("invalid backoff configuration")

// retryUnavailable runs fn, retrying with exponential delay while it fails
// with weather.ErrSourceUnavailable. Any other error is returned immediately.
func retryUnavailable(ctx context.Context, cfg BackoffConfig, fn func() error) error {
	if cfg.MaxRetries < 0 || cfg.InitialInterval <= 0 {
		return errInvalidBackoff
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil || !errors.Is(err, weather.ErrSourceUnavailable) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return err
		}

		delay := cfg.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.MaxInterval && cfg.MaxInterval > 0 {
			delay = cfg.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
