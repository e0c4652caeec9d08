package influxdb

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// WriteSample persists one sensor sample as a point.
//
// The write blocks until the store accepts the point. There is no
// batching: the sensor run emits at most one point per interval and
// treats any write failure as fatal, so buffering would only delay
// the error.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - s: Sample to persist
//
// Returns:
//   - error: Wrapped ErrWriteFailed if the store rejects the point
func (c *Client) WriteSample(ctx context.Context, s sensor.Sample) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	point := write.NewPoint(s.Series, s.Tags(), s.Fields(), s.Time)
	if err := c.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return nil
}
