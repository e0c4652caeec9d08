// Package mqtt provides the optional live telemetry mirror.
//
// When enabled, each emitted sample is republished as JSON to
// fieldwave/telemetry/<series> so dashboards and other subscribers can
// watch the signal without querying the store. The mirror is strictly
// best-effort: the sensor run logs publish failures and carries on,
// and the paho client reconnects in the background on its own.
//
// # Configuration
//
//	mqtt:
//	  enabled: true
//	  broker:
//	    host: "localhost"
//	    port: 1883
//	    client_id: "fieldwave-sensor"
//	  qos: 1
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package mqtt
