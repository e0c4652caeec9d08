package sensor

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Writer persists one sample. Writes block until the store accepts the
// point; a write error is fatal to the run.
type Writer interface {
	WriteSample(ctx context.Context, s Sample) error
}

// Mirror republishes a sample to a secondary sink (the MQTT telemetry
// mirror). Mirror failures are reported but never stop the run.
type Mirror interface {
	PublishSample(s Sample) error
}

// Logger is the subset of logging used by the emitter.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Emitter produces the synthetic sine signal at a fixed rate.
//
// Each iteration computes x = i/10 and y = sin(x), stamps the sample
// with the wall clock, writes it through the Writer, echoes it to Out,
// then waits one interval before the next sample. A run is restartable
// only by calling Run again; the index always starts at zero.
type Emitter struct {
	writer   Writer
	series   string
	interval time.Duration

	// Out receives the per-sample echo. Defaults to io.Discard.
	out io.Writer

	mirror Mirror
	log    Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithEcho directs the per-sample echo to w.
func WithEcho(w io.Writer) Option {
	return func(e *Emitter) { e.out = w }
}

// WithMirror attaches a secondary publish sink.
func WithMirror(m Mirror) Option {
	return func(e *Emitter) { e.mirror = m }
}

// WithLogger attaches a logger for operational messages.
func WithLogger(l Logger) Option {
	return func(e *Emitter) { e.log = l }
}

// WithClock replaces the wall clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

// NewEmitter creates an Emitter writing samples for series through w,
// one sample per interval.
func NewEmitter(w Writer, series string, interval time.Duration, opts ...Option) *Emitter {
	e := &Emitter{
		writer:   w,
		series:   series,
		interval: interval,
		out:      io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run emits samples until the limit is reached or ctx is cancelled.
//
// Cancellation is observed between samples and during an in-flight
// write: once ctx is done, no further sample is emitted and Run
// returns nil. The interval wait is skipped after the final sample of
// a bounded run.
//
// Returns:
//   - uint64: Number of samples emitted
//   - error: nil on natural completion or cancellation; the write
//     error if the store rejected a point
func (e *Emitter) Run(ctx context.Context, limit Limit) (uint64, error) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var emitted uint64
	for i := uint64(0); !limit.Reached(i); i++ {
		if ctx.Err() != nil {
			return emitted, nil
		}

		s := NewSample(e.series, i, e.now())
		if err := e.writer.WriteSample(ctx, s); err != nil {
			// A write abandoned by cancellation is the interrupt path,
			// not a store failure.
			if ctx.Err() != nil {
				return emitted, nil
			}
			return emitted, fmt.Errorf("writing sample %d: %w", i, err)
		}
		emitted++

		fmt.Fprintln(e.out, s)
		if e.log != nil {
			e.log.Info("sample written", "series", e.series, "index", i, "x", s.X, "y", s.Y)
		}

		if e.mirror != nil {
			if err := e.mirror.PublishSample(s); err != nil && e.log != nil {
				e.log.Warn("telemetry mirror publish failed", "error", err)
			}
		}

		if limit.Reached(i + 1) {
			break
		}

		timer.Reset(e.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return emitted, nil
		case <-timer.C:
		}
	}

	return emitted, nil
}
