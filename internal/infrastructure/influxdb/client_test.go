package influxdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fieldwave/fieldwave-core/internal/infrastructure/config"
	"github.com/fieldwave/fieldwave-core/internal/infrastructure/influxdb"
	"github.com/fieldwave/fieldwave-core/internal/sensor"
)

// fakeInflux is a minimal stand-in for the InfluxDB v2 HTTP API,
// covering exactly the endpoints the client exercises.
type fakeInflux struct {
	mu       sync.Mutex
	orgName  string
	buckets  []string
	writes   []string
	deletes  []string
	queryCSV string
	pingDown bool

	// pageLimit caps unfiltered bucket listings the way a real server
	// does (default page size 20). Zero means no cap.
	pageLimit int
}

func newFakeInflux() *fakeInflux {
	return &fakeInflux{orgName: "farm"}
}

func (f *fakeInflux) addBucket(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets = append(f.buckets, name)
}

func (f *fakeInflux) bucketNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.buckets))
	copy(out, f.buckets)
	return out
}

func (f *fakeInflux) writtenLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeInflux) deletePredicates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deletes))
	copy(out, f.deletes)
	return out
}

func (f *fakeInflux) bucketJSON(name string) map[string]any {
	return map[string]any{
		"id":             "2222222222222222",
		"orgID":          "1111111111111111",
		"name":           name,
		"retentionRules": []any{},
	}
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/ping":
		if f.pingDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/api/v2/buckets" && r.Method == http.MethodGet:
		nameFilter := r.URL.Query().Get("name")
		var list []map[string]any
		for _, b := range f.buckets {
			if nameFilter != "" && b != nameFilter {
				continue
			}
			if nameFilter == "" && f.pageLimit > 0 && len(list) == f.pageLimit {
				break
			}
			list = append(list, f.bucketJSON(b))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"buckets": list})

	case r.URL.Path == "/api/v2/buckets" && r.Method == http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.buckets = append(f.buckets, body.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(f.bucketJSON(body.Name))

	case r.URL.Path == "/api/v2/orgs":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orgs": []map[string]any{
				{"id": "1111111111111111", "name": f.orgName},
			},
		})

	case r.URL.Path == "/api/v2/delete":
		body, _ := io.ReadAll(r.Body)
		f.deletes = append(f.deletes, string(body))
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
			if line != "" {
				f.writes = append(f.writes, line)
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/api/v2/query":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = io.WriteString(w, f.queryCSV)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testInfluxConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Database:      "sensordata",
		Org:           "farm",
		ProbeAttempts: 2,
		ProbeBackoff:  1,
	}
}

func connectTestClient(t *testing.T, fake *fakeInflux) (*influxdb.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := influxdb.Connect(context.Background(), server.URL, testInfluxConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client, server
}

func TestConnect(t *testing.T) {
	fake := newFakeInflux()
	client, server := connectTestClient(t, fake)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}

	if client.URL() != server.URL {
		t.Errorf("URL() = %q, want %q", client.URL(), server.URL)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	// A server that is up but never healthy: every probe fails.
	fake := newFakeInflux()
	fake.pingDown = true
	server := httptest.NewServer(fake)
	defer server.Close()

	cfg := testInfluxConfig()
	cfg.ProbeAttempts = 1

	_, err := influxdb.Connect(context.Background(), server.URL, cfg)
	if err == nil {
		t.Fatal("Connect() should fail when every probe fails")
	}
	if !errors.Is(err, influxdb.ErrUnreachable) {
		t.Errorf("Connect() error = %v, want ErrUnreachable", err)
	}
	if !strings.Contains(err.Error(), server.URL) {
		t.Errorf("Connect() error %q does not name the endpoint", err)
	}
}

func TestHealthCheck(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_AfterClose(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)

	client.Close()

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestClose(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}

	// Close is idempotent
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestEnsureDatabase_AlreadyExists(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	created, err := client.EnsureDatabase(context.Background())
	if err != nil {
		t.Fatalf("EnsureDatabase() error = %v", err)
	}

	if created {
		t.Error("EnsureDatabase() created = true for a pre-existing database")
	}

	if got := len(fake.bucketNames()); got != 1 {
		t.Errorf("bucket count = %d, want 1 (no duplicate created)", got)
	}
}

func TestEnsureDatabase_CreatesWhenAbsent(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("unrelated")
	client, _ := connectTestClient(t, fake)

	created, err := client.EnsureDatabase(context.Background())
	if err != nil {
		t.Fatalf("EnsureDatabase() error = %v", err)
	}

	if !created {
		t.Error("EnsureDatabase() created = false, want true")
	}

	names := fake.bucketNames()
	found := false
	for _, n := range names {
		if n == "sensordata" {
			found = true
		}
	}
	if !found {
		t.Errorf("buckets = %v, want sensordata created", names)
	}
}

func TestEnsureDatabase_ExistsBeyondFirstPage(t *testing.T) {
	// The database exists but sits past the server's default listing
	// page, so only a lookup by name can see it.
	fake := newFakeInflux()
	fake.pageLimit = 20
	for i := 0; i < 25; i++ {
		fake.addBucket(fmt.Sprintf("bucket-%02d", i))
	}
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	created, err := client.EnsureDatabase(context.Background())
	if err != nil {
		t.Fatalf("EnsureDatabase() error = %v", err)
	}
	if created {
		t.Error("EnsureDatabase() created = true for a database beyond the first page")
	}

	if got := len(fake.bucketNames()); got != 26 {
		t.Errorf("bucket count = %d, want 26 (no duplicate created)", got)
	}
}

func TestEnsureDatabase_Idempotent(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)

	created, err := client.EnsureDatabase(context.Background())
	if err != nil || !created {
		t.Fatalf("first EnsureDatabase() = (%v, %v), want (true, nil)", created, err)
	}

	created, err = client.EnsureDatabase(context.Background())
	if err != nil {
		t.Fatalf("second EnsureDatabase() error = %v", err)
	}
	if created {
		t.Error("second EnsureDatabase() created = true, want false")
	}

	if got := len(fake.bucketNames()); got != 1 {
		t.Errorf("bucket count = %d, want 1", got)
	}
}

func TestResetSeries_NoOpOnFreshDatabase(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	// created=true means there is nothing to clear, reset flag or not
	if err := client.ResetSeries(context.Background(), "sinwave", true, true); err != nil {
		t.Fatalf("ResetSeries() error = %v", err)
	}

	if got := len(fake.deletePredicates()); got != 0 {
		t.Errorf("delete calls = %d, want 0 on a fresh database", got)
	}
}

func TestResetSeries_NoOpWithoutFlag(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	if err := client.ResetSeries(context.Background(), "sinwave", false, false); err != nil {
		t.Fatalf("ResetSeries() error = %v", err)
	}

	if got := len(fake.deletePredicates()); got != 0 {
		t.Errorf("delete calls = %d, want 0 without the reset flag", got)
	}
}

func TestResetSeries_DeletesExistingSeries(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	if err := client.ResetSeries(context.Background(), "sinwave", false, true); err != nil {
		t.Fatalf("ResetSeries() error = %v", err)
	}

	predicates := fake.deletePredicates()
	if len(predicates) != 1 {
		t.Fatalf("delete calls = %d, want 1", len(predicates))
	}
	if !strings.Contains(predicates[0], `_measurement=\"sinwave\"`) &&
		!strings.Contains(predicates[0], `_measurement="sinwave"`) {
		t.Errorf("delete predicate %q does not scope to the series", predicates[0])
	}
}

func TestWriteSample(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	client, _ := connectTestClient(t, fake)

	s := sensor.NewSample("sinwave", 1, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err := client.WriteSample(context.Background(), s); err != nil {
		t.Fatalf("WriteSample() error = %v", err)
	}

	lines := fake.writtenLines()
	if len(lines) != 1 {
		t.Fatalf("written lines = %d, want 1", len(lines))
	}

	line := lines[0]
	if !strings.HasPrefix(line, "sinwave,") {
		t.Errorf("line %q does not start with the measurement", line)
	}
	if !strings.Contains(line, "x=0.1") {
		t.Errorf("line %q missing tag x=0.1", line)
	}
	if !strings.Contains(line, "value=") {
		t.Errorf("line %q missing field value", line)
	}
	if !strings.HasSuffix(line, fmt.Sprintf("%d", s.Time.UnixNano())) {
		t.Errorf("line %q missing nanosecond timestamp", line)
	}
}

func TestWriteSample_AfterClose(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)
	client.Close()

	s := sensor.NewSample("sinwave", 0, time.Now())
	err := client.WriteSample(context.Background(), s)
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("WriteSample() error = %v, want ErrNotConnected", err)
	}
}

const queryResultCSV = "#datatype,string,long,dateTime:RFC3339,dateTime:RFC3339,dateTime:RFC3339,double,string,string,string\r\n" +
	"#group,false,false,true,true,false,false,true,true,true\r\n" +
	"#default,_result,,,,,,,,\r\n" +
	",result,table,_start,_stop,_time,_value,_field,_measurement,x\r\n" +
	",,0,1970-01-01T00:00:00Z,2026-03-14T10:00:00Z,2026-03-14T09:00:00Z,0,value,sinwave,0\r\n" +
	",,0,1970-01-01T00:00:00Z,2026-03-14T10:00:00Z,2026-03-14T09:00:01Z,0.09983341664682815,value,sinwave,0.1\r\n" +
	",,0,1970-01-01T00:00:00Z,2026-03-14T10:00:00Z,2026-03-14T09:00:02Z,0.19866933079506122,value,sinwave,0.2\r\n" +
	"\r\n"

func TestEntries(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	fake.queryCSV = queryResultCSV
	client, _ := connectTestClient(t, fake)

	readings, err := client.Entries(context.Background(), "sinwave")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	if len(readings) != 3 {
		t.Fatalf("Entries() = %d readings, want 3", len(readings))
	}

	wantValues := []float64{0, 0.09983341664682815, 0.19866933079506122}
	wantTags := []string{"0", "0.1", "0.2"}

	for i, r := range readings {
		if r.Series != "sinwave" {
			t.Errorf("reading %d: Series = %q, want sinwave", i, r.Series)
		}
		if r.Field != "value" {
			t.Errorf("reading %d: Field = %q, want value", i, r.Field)
		}

		v, ok := r.Value.(float64)
		if !ok {
			t.Fatalf("reading %d: Value is %T, want float64", i, r.Value)
		}
		if math.Abs(v-wantValues[i]) > 1e-9 {
			t.Errorf("reading %d: Value = %v, want %v", i, v, wantValues[i])
		}

		// The tag rides along with the record
		if r.Tags[sensor.TagKey] != wantTags[i] {
			t.Errorf("reading %d: tag = %q, want %q", i, r.Tags[sensor.TagKey], wantTags[i])
		}
	}

	// Engine order is time-ascending
	for i := 1; i < len(readings); i++ {
		if !readings[i].Time.After(readings[i-1].Time) {
			t.Errorf("reading %d time %v not after reading %d", i, readings[i].Time, i-1)
		}
	}
}

func TestEntries_Empty(t *testing.T) {
	fake := newFakeInflux()
	fake.addBucket("sensordata")
	fake.queryCSV = "\r\n"
	client, _ := connectTestClient(t, fake)

	readings, err := client.Entries(context.Background(), "sinwave")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	if len(readings) != 0 {
		t.Errorf("Entries() = %d readings, want 0", len(readings))
	}
}

func TestEntries_AfterClose(t *testing.T) {
	fake := newFakeInflux()
	client, _ := connectTestClient(t, fake)
	client.Close()

	_, err := client.Entries(context.Background(), "sinwave")
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("Entries() error = %v, want ErrNotConnected", err)
	}
}
