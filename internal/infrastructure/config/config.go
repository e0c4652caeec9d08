package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Fieldwave.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Sensor   SensorConfig   `yaml:"sensor"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InfluxDBConfig contains InfluxDB connection settings.
//
// The server host and port are deliberately absent: they arrive as
// command-line arguments, not configuration.
type InfluxDBConfig struct {
	// Database is the target database (v2 bucket) name. Required.
	Database string `yaml:"database"`

	// Token is the API token. May be empty for unauthenticated dev servers.
	Token string `yaml:"token"`

	// Org is the organisation name owning the database.
	Org string `yaml:"org"`

	// ProbeAttempts is the number of reachability probes before giving up.
	ProbeAttempts int `yaml:"probe_attempts"`

	// ProbeBackoff is the initial probe backoff in seconds. Doubles per attempt.
	ProbeBackoff int `yaml:"probe_backoff"`
}

// SensorConfig contains synthetic sensor settings.
type SensorConfig struct {
	// Series is the measurement name samples are written under.
	Series string `yaml:"series"`

	// Interval is the emission period in seconds.
	Interval int `yaml:"interval"`
}

// MQTTConfig contains settings for the optional MQTT telemetry mirror.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FIELDWAVE_SECTION_KEY
// For example: FIELDWAVE_DATABASE, FIELDWAVE_INFLUXDB_TOKEN
//
// A missing file at the default path is not an error: the CLI must remain
// runnable from environment variables alone. A file named explicitly via
// FIELDWAVE_CONFIG must exist.
//
// Parameters:
//   - path: Path to the YAML configuration file
//   - required: Whether a missing file is fatal
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string, required bool) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
		// Defaults plus environment only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		InfluxDB: InfluxDBConfig{
			Org:           "fieldwave",
			ProbeAttempts: 5,
			ProbeBackoff:  1,
		},
		Sensor: SensorConfig{
			Series:   "sinwave",
			Interval: 1,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "fieldwave-sensor",
			},
			QoS: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FIELDWAVE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database name: the one value every deployment must supply
	if v := os.Getenv("FIELDWAVE_DATABASE"); v != "" {
		cfg.InfluxDB.Database = v
	}

	// InfluxDB
	if v := os.Getenv("FIELDWAVE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("FIELDWAVE_INFLUXDB_ORG"); v != "" {
		cfg.InfluxDB.Org = v
	}

	// Sensor
	if v := os.Getenv("FIELDWAVE_SENSOR_SERIES"); v != "" {
		cfg.Sensor.Series = v
	}

	// MQTT
	if v := os.Getenv("FIELDWAVE_MQTT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MQTT.Enabled = b
		}
	}
	if v := os.Getenv("FIELDWAVE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FIELDWAVE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FIELDWAVE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// The database name has no usable default: refuse to start without it.
	if c.InfluxDB.Database == "" {
		errs = append(errs, "influxdb.database is required (set FIELDWAVE_DATABASE environment variable)")
	}

	if c.InfluxDB.ProbeAttempts < 1 {
		errs = append(errs, "influxdb.probe_attempts must be at least 1")
	}
	if c.InfluxDB.ProbeBackoff < 1 {
		errs = append(errs, "influxdb.probe_backoff must be at least 1")
	}

	if c.Sensor.Series == "" {
		errs = append(errs, "sensor.series is required")
	}
	if c.Sensor.Interval < 1 {
		errs = append(errs, "sensor.interval must be at least 1")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SampleInterval returns the sensor emission period as a Duration.
func (c SensorConfig) SampleInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// InitialProbeBackoff returns the initial probe backoff as a Duration.
func (c InfluxDBConfig) InitialProbeBackoff() time.Duration {
	return time.Duration(c.ProbeBackoff) * time.Second
}
