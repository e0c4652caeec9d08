// Package sensor generates the synthetic periodic signal.
//
// The Emitter models a field sensor polled at a fixed rate: for sample
// index i it produces x = i/10 and y = sin(x), stamps the pair with the
// wall clock, and hands it to a storage Writer. Each sample is echoed
// to stdout for observability, and optionally republished through a
// telemetry Mirror.
//
// # Usage
//
//	emitter := sensor.NewEmitter(store, "sinwave", time.Second,
//	    sensor.WithEcho(os.Stdout),
//	    sensor.WithLogger(log),
//	)
//	emitted, err := emitter.Run(ctx, sensor.LimitOf(100))
//
// An unbounded run (sensor.Unbounded()) continues until ctx is
// cancelled. Cancellation never surfaces as an error: the caller
// distinguishes it via ctx.Err() when it matters.
package sensor
