// Package config provides configuration loading for Fieldwave.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then FIELDWAVE_* environment variables. The only value without a default
// is the target database name (FIELDWAVE_DATABASE) — loading fails fast
// when it is absent, before any network activity.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
//	FIELDWAVE_DATABASE         target database (required)
//	FIELDWAVE_INFLUXDB_TOKEN   API token
//	FIELDWAVE_INFLUXDB_ORG     organisation name
//	FIELDWAVE_SENSOR_SERIES    series (measurement) name
//	FIELDWAVE_MQTT_ENABLED     enable the MQTT telemetry mirror
//	FIELDWAVE_MQTT_HOST        broker host
//	FIELDWAVE_MQTT_USERNAME    broker username
//	FIELDWAVE_MQTT_PASSWORD    broker password
//
// Never commit tokens or passwords to the config file; supply them via
// the environment.
package config
