// Package influxdb provides InfluxDB connectivity for the sensor run.
//
// It wraps the official v2 client and owns every storage interaction
// the run needs: the startup reachability probe with exponential
// backoff, create-if-absent database initialisation, the optional
// series reset, one blocking write per sample, and the select-all
// read-back used for the final listing.
//
// A database maps onto an InfluxDB v2 bucket; lookup and creation go
// through the buckets API, delete-series goes through the delete API
// with a measurement predicate.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, "http://localhost:8086", cfg.InfluxDB,
//	    influxdb.WithLogger(log),
//	)
//	if err != nil {
//	    // server unreachable after all probes: fatal
//	}
//	defer client.Close()
//
//	created, err := client.EnsureDatabase(ctx)
//	err = client.ResetSeries(ctx, "sinwave", created, resetFlag)
//	err = client.WriteSample(ctx, sample)
//	readings, err := client.Entries(ctx, "sinwave")
//
// # Error Handling
//
// Only the reachability probe retries. Every other failure is returned
// as-is, wrapped with a package sentinel, and the caller treats it as
// fatal.
package influxdb
