package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// Store provides read access to the recorded series.
//
// The production implementation is the InfluxDB client; tests substitute
// an in-memory fake.
type Store interface {
	// Entries returns every recorded reading for the series in
	// timestamp-ascending order.
	Entries(ctx context.Context, series string) ([]sensor.Reading, error)
}

// Reporter prints the full contents of a series in the same
// human-readable style as the per-sample echo.
type Reporter struct {
	store Store
	out   io.Writer
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput redirects the listing to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// New creates a Reporter backed by the given store.
func New(store Store, opts ...Option) *Reporter {
	r := &Reporter{
		store: store,
		out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Print fetches the series and writes one line per reading, preceded by
// an entry count. An empty series prints the count line only.
//
// Parameters:
//   - ctx: Context for cancellation
//   - series: Series (measurement) name to list
//
// Returns:
//   - error: wrapped store error if the listing query fails
func (r *Reporter) Print(ctx context.Context, series string) error {
	entries, err := r.store.Entries(ctx, series)
	if err != nil {
		return fmt.Errorf("listing series %q: %w", series, err)
	}

	fmt.Fprintf(r.out, "%d entries in series %q\n", len(entries), series)
	for _, entry := range entries {
		fmt.Fprintln(r.out, entry)
	}

	return nil
}
