package influxdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EnsureDatabase makes sure the configured database (v2 bucket) exists.
//
// It looks the database up by name; if absent, the database is created
// under the configured organisation. A name lookup rather than a
// listing scan, since listings are paginated and the database may sit
// beyond the first page.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - bool: true if the database was created, false if it already existed
//   - error: Lookup or creation failure (fatal to the run, no retry)
func (c *Client) EnsureDatabase(ctx context.Context) (bool, error) {
	if !c.IsConnected() {
		return false, ErrNotConnected
	}

	bucket, err := c.client.BucketsAPI().FindBucketByName(ctx, c.cfg.Database)
	if err == nil && bucket != nil {
		return false, nil
	}
	// The client reports an absent bucket as an error rather than a nil
	// result; anything else is a real lookup failure.
	if err != nil && !isNotFound(err) {
		return false, fmt.Errorf("looking up database %q: %w", c.cfg.Database, err)
	}

	org, err := c.client.OrganizationsAPI().FindOrganizationByName(ctx, c.cfg.Org)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %w", ErrOrgNotFound, c.cfg.Org, err)
	}

	if _, err := c.client.BucketsAPI().CreateBucketWithName(ctx, org, c.cfg.Database); err != nil {
		return false, fmt.Errorf("creating database %q: %w", c.cfg.Database, err)
	}

	return true, nil
}

// isNotFound reports whether a buckets API error means the bucket does
// not exist. The client has no sentinel for this: an empty lookup
// result and a server-side 404 both surface as "not found" errors.
func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "not found")
}

// ResetSeries deletes all stored points for the series when a reset was
// requested against a pre-existing database.
//
// A freshly created database has nothing to clear, so reset is a no-op
// there regardless of the flag.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - series: Measurement name to clear
//   - created: Whether EnsureDatabase just created the database
//   - reset: Whether the caller asked for a reset
//
// Returns:
//   - error: Deletion failure (fatal to the run, no retry)
func (c *Client) ResetSeries(ctx context.Context, series string, created, reset bool) error {
	if created || !reset {
		return nil
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	predicate := fmt.Sprintf(`_measurement="%s"`, series)
	err := c.client.DeleteAPI().DeleteWithName(
		ctx,
		c.cfg.Org,
		c.cfg.Database,
		time.Unix(0, 0),
		time.Now().UTC(),
		predicate,
	)
	if err != nil {
		return fmt.Errorf("clearing series %q: %w", series, err)
	}

	return nil
}
