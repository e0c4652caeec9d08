package influxdb

import (
	"context"
	"fmt"
	"time"
)

// Prober checks server reachability with bounded exponential backoff.
//
// Waits double after every failed attempt starting from Backoff
// (1s, 2s, 4s, 8s, 16s for five attempts at the default), including
// after the final failure, mirroring how a field gateway yields the
// line before giving up. Exhausting all attempts is fatal to the run:
// Wait returns ErrUnreachable wrapped with the endpoint.
type Prober struct {
	// Endpoint names the probed server in logs and errors.
	Endpoint string

	// Ping performs one reachability check.
	Ping func(ctx context.Context) error

	// Attempts is the probe budget. Must be at least 1.
	Attempts int

	// Backoff is the wait after the first failed attempt.
	Backoff time.Duration

	// Log receives per-attempt progress. May be nil.
	Log Logger

	// sleep waits between attempts, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Wait probes until the server answers or the attempt budget runs out.
//
// Returns:
//   - error: nil once a probe succeeds; ErrUnreachable after the last
//     failure; the context error if ctx is cancelled mid-backoff
func (p *Prober) Wait(ctx context.Context) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	wait := p.Backoff
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err := p.Ping(ctx)
		if err == nil {
			return nil
		}

		if p.Log != nil {
			p.Log.Warn("waiting for server",
				"endpoint", p.Endpoint,
				"attempt", attempt,
				"attempts", p.Attempts,
				"backoff", wait.String(),
				"error", err,
			)
		}

		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
		wait *= 2
	}

	return fmt.Errorf("%w: cannot connect to %s after %d attempts", ErrUnreachable, p.Endpoint, p.Attempts)
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
