package influxdb

import (
	"context"
	"fmt"

	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// Entries returns every stored point for the series, oldest first.
//
// The query is a plain "select all" scoped to the measurement; the tag
// value rides along with each record rather than being projected out,
// so the caller sees the full stored shape.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - series: Measurement name to read back
//
// Returns:
//   - []sensor.Reading: Stored points in engine order (time-ascending)
//   - error: Wrapped ErrQueryFailed on any query or decode failure
func (c *Client) Entries(ctx context.Context, series string) ([]sensor.Reading, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	flux := fmt.Sprintf(
		`from(bucket: %q) |> range(start: 0) |> filter(fn: (r) => r._measurement == %q) |> sort(columns: ["_time"])`,
		c.cfg.Database, series,
	)

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	var readings []sensor.Reading
	for result.Next() {
		record := result.Record()

		reading := sensor.Reading{
			Series: record.Measurement(),
			Time:   record.Time(),
			Field:  record.Field(),
			Value:  record.Value(),
			Tags:   map[string]string{},
		}
		if v, ok := record.Values()[sensor.TagKey]; ok {
			if tag, ok := v.(string); ok {
				reading.Tags[sensor.TagKey] = tag
			}
		}

		readings = append(readings, reading)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, result.Err())
	}

	return readings, nil
}
