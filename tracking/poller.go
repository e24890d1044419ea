// Package tracking keeps order lists fresh by polling the API.
package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	CourierInterval  = 15 * time.Second
	CustomerInterval = 5 * time.Second
)

// Poller calls Fetch every Interval, one call at a time. After a failure the
// wait doubles, starting at twice Interval, up to MaxInterval (eight times
// Interval when unset), and drops back to Interval on the next success. A
// failed poll never waits less than a healthy one.
type Poller struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Fetch       func(ctx context.Context) error
	Log         *slog.Logger
}

// Run fetches immediately and then keeps polling until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.InitialInterval = 2 * p.Interval
	switch {
	case p.MaxInterval <= 0:
		bo.MaxInterval = 8 * p.Interval
	case p.MaxInterval < bo.InitialInterval:
		bo.MaxInterval = bo.InitialInterval
	default:
		bo.MaxInterval = p.MaxInterval
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		wait := p.Interval
		if err := p.Fetch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait = bo.NextBackOff()
			if p.Log != nil {
				p.Log.Warn("poll failed", "error", err, "retry_in", wait)
			}
		} else {
			bo.Reset()
		}
		timer.Reset(wait)
	}
}
