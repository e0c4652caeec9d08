// Fieldwave - Synthetic Sensor Feed
//
// This is the main entry point for the fieldwave sensor. It generates a
// sine-wave signal one sample per second, records every sample in a
// time-series store, optionally mirrors each sample over MQTT, and
// prints the full recorded series before exiting.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fieldwave/fieldwave-core/internal/infrastructure/config"
	"github.com/fieldwave/fieldwave-core/internal/infrastructure/influxdb"
	"github.com/fieldwave/fieldwave-core/internal/infrastructure/logging"
	"github.com/fieldwave/fieldwave-core/internal/infrastructure/mqtt"
	"github.com/fieldwave/fieldwave-core/internal/report"
	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// reportTimeout bounds the final series listing, which runs after the
// run context may already be cancelled.
const reportTimeout = 30 * time.Second

const usageText = `Usage: fieldwave [--reset] [--count N] <host> <port>

Arguments:
  host    Time-series server hostname or address
  port    Time-series server port

Flags:
  -r, --reset  Drop previously recorded samples before starting
  --count N    Stop after N samples (0 = run until interrupted)

Environment:
  FIELDWAVE_DATABASE    Database (bucket) name. Required unless set in
                        the config file.
  FIELDWAVE_CONFIG      Config file path (default configs/config.yaml)
`

// options holds the parsed command line.
type options struct {
	host  string
	port  int
	reset bool
	limit sensor.Limit
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fieldwave: %v\n\n%s", err, usageText)
		os.Exit(1)
	}

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM).
	// Interrupting a run is a normal way to end it, not a failure.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs parses flags and positional arguments.
//
// Exactly two positional arguments (host and port) are required after
// any flags.
//
// Parameters:
//   - args: Command line arguments, excluding the program name
//
// Returns:
//   - options: Parsed and validated options
//   - error: If flags are malformed or positionals are wrong
func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("fieldwave", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	reset := fs.Bool("reset", false, "drop previously recorded samples before starting")
	fs.BoolVar(reset, "r", false, "shorthand for --reset")
	count := fs.Uint64("count", 0, "stop after N samples (0 = run until interrupted)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return options{}, fmt.Errorf("expected exactly 2 arguments (host and port), got %d", len(rest))
	}

	port, err := strconv.Atoi(rest[1])
	if err != nil || port < 1 || port > 65535 {
		return options{}, fmt.Errorf("invalid port %q", rest[1])
	}

	limit := sensor.Unbounded()
	if *count > 0 {
		limit = sensor.LimitOf(*count)
	}

	return options{
		host:  rest[0],
		port:  port,
		reset: *reset,
		limit: limit,
	}, nil
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: Parsed command line options
//
// Returns:
//   - error: nil on clean shutdown or interrupt, or error describing failure
func run(ctx context.Context, opts options) error {
	// Use default logger until config is loaded
	log := logging.Default()

	// Load configuration. A missing file at the default path is fine;
	// an explicitly requested file must exist.
	configPath, configRequired := getConfigPath()
	cfg, err := config.Load(configPath, configRequired)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("starting fieldwave",
		"version", version,
		"commit", commit,
		"build_date", date,
		"series", cfg.Sensor.Series,
		"database", cfg.InfluxDB.Database,
	)

	// Connect to the time-series store, waiting for the server to come
	// up. Exhausting the probe schedule is fatal.
	serverURL := fmt.Sprintf("http://%s:%d", opts.host, opts.port)
	store, err := influxdb.Connect(ctx, serverURL, cfg.InfluxDB, influxdb.WithLogger(log))
	if err != nil {
		return fmt.Errorf("connecting to time-series store: %w", err)
	}
	defer func() {
		log.Info("closing store connection")
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()
	log.Info("store connected", "url", serverURL, "database", cfg.InfluxDB.Database)

	// Make sure the database exists, creating it on first run.
	created, err := store.EnsureDatabase(ctx)
	if err != nil {
		return fmt.Errorf("ensuring database %q: %w", cfg.InfluxDB.Database, err)
	}
	if created {
		log.Info("database created", "database", cfg.InfluxDB.Database)
	}

	// Drop any previous samples if asked to. A freshly created database
	// has nothing to drop.
	if err := store.ResetSeries(ctx, cfg.Sensor.Series, created, opts.reset); err != nil {
		return fmt.Errorf("resetting series %q: %w", cfg.Sensor.Series, err)
	}
	if opts.reset && !created {
		log.Info("series reset", "series", cfg.Sensor.Series)
	}

	// Connect the optional MQTT mirror. The feed runs fine without it,
	// so a broker failure only costs the live mirror.
	emitterOpts := []sensor.Option{
		sensor.WithEcho(os.Stdout),
		sensor.WithLogger(log),
	}
	if cfg.MQTT.Enabled {
		mirror, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			log.Warn("MQTT mirror unavailable, continuing without it", "error", mqttErr)
		} else {
			defer func() {
				log.Info("disconnecting MQTT mirror")
				if closeErr := mirror.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			mirror.SetOnDisconnect(func(err error) {
				log.Warn("MQTT mirror disconnected", "error", err)
			})
			log.Info("MQTT mirror connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
			emitterOpts = append(emitterOpts, sensor.WithMirror(mirror))
		}
	}

	// Generate and record the signal until the limit is reached or the
	// run is interrupted.
	emitter := sensor.NewEmitter(store, cfg.Sensor.Series, cfg.Sensor.SampleInterval(), emitterOpts...)
	written, err := emitter.Run(ctx, opts.limit)
	if err != nil {
		return fmt.Errorf("sensor run: %w", err)
	}
	log.Info("sensor run finished", "samples", written)

	// List everything the store now holds for the series. The run
	// context may be cancelled by the interrupt that stopped the loop,
	// so the listing gets its own deadline.
	reportCtx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := report.New(store).Print(reportCtx, cfg.Sensor.Series); err != nil {
		return err
	}

	log.Info("fieldwave stopped")
	return nil
}

// getConfigPath returns the configuration file path and whether the
// file must exist. Uses FIELDWAVE_CONFIG environment variable if set,
// otherwise the default path, which is optional.
func getConfigPath() (string, bool) {
	if path := os.Getenv("FIELDWAVE_CONFIG"); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}
