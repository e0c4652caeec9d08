package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/fieldwave/fieldwave-core/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultPingTimeout = 5 * time.Second
)

// Logger is the subset of logging used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Client wraps the InfluxDB v2 client for the sensor run.
//
// It owns the single connection handle for the whole process: the
// connector, generator, and reporter all go through it sequentially.
// Writes are blocking — one point per write call, no batching — since
// the run blocks on each sample anyway.
//
// Thread Safety:
//   - All methods are safe for concurrent use, though the sensor run
//     only ever uses the client from one goroutine.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	cfg      config.InfluxDBConfig
	url      string

	connected bool
	mu        sync.RWMutex
}

// Option configures a Client during Connect.
type Option func(*connectOptions)

type connectOptions struct {
	log Logger

	// sleep is the probe wait, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithLogger attaches a logger for probe progress and warnings.
func WithLogger(log Logger) Option {
	return func(o *connectOptions) { o.log = log }
}

// Connect establishes a connection to the InfluxDB server.
//
// It performs the following:
//  1. Creates the client with token authentication
//  2. Probes the server with bounded exponential backoff (ErrUnreachable
//     wrapped with the endpoint if every probe fails)
//  3. Prepares the blocking write API and the query API
//
// Parameters:
//   - ctx: Context for cancellation of the probe phase
//   - serverURL: Endpoint from the command line, e.g. "http://localhost:8086"
//   - cfg: InfluxDB configuration from config.yaml / environment
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the server stayed unreachable through every probe
func Connect(ctx context.Context, serverURL string, cfg config.InfluxDBConfig, opts ...Option) (*Client, error) {
	o := &connectOptions{sleep: sleepContext}
	for _, opt := range opts {
		opt(o)
	}

	client := influxdb2.NewClient(serverURL, cfg.Token)

	prober := &Prober{
		Endpoint: serverURL,
		Attempts: cfg.ProbeAttempts,
		Backoff:  cfg.InitialProbeBackoff(),
		Log:      o.log,
		Ping: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
			defer cancel()
			healthy, err := client.Ping(pingCtx)
			if err != nil {
				return err
			}
			if !healthy {
				return errors.New("server not healthy")
			}
			return nil
		},
		sleep: o.sleep,
	}

	if err := prober.Wait(ctx); err != nil {
		client.Close()
		return nil, err
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPIBlocking(cfg.Org, cfg.Database),
		queryAPI:  client.QueryAPI(cfg.Org),
		cfg:       cfg,
		url:       serverURL,
		connected: true,
	}

	return c, nil
}

// Close shuts down the InfluxDB connection.
//
// Pending blocking writes have already completed by their nature, so
// this only releases the underlying client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.client.Close()

	return nil
}

// HealthCheck verifies the InfluxDB connection is alive and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}

	return nil
}

// IsConnected returns the current connection state.
//
// Note: This reflects the last known state. For reliability,
// use HealthCheck which performs an active ping.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// URL returns the server endpoint this client talks to.
func (c *Client) URL() string {
	return c.url
}
