package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrUnreachable) {
//	    // All probes failed; the run cannot proceed
//	}
var (
	// ErrUnreachable indicates the server did not answer any reachability
	// probe within the configured attempt budget. Fatal to the run.
	ErrUnreachable = errors.New("influxdb: server unreachable")

	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrWriteFailed indicates a write operation failed.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrQueryFailed indicates a read-back query failed.
	ErrQueryFailed = errors.New("influxdb: query failed")

	// ErrOrgNotFound indicates the configured organisation does not exist,
	// so the database cannot be created under it.
	ErrOrgNotFound = errors.New("influxdb: organisation not found")
)
