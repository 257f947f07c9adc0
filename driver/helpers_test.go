package driver_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/driver"
)

const waitFor = 2 * time.Second

func newDriver(t *testing.T, dialer api.Dialer, opts ...func(*driver.Config)) (*driver.Driver, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	nop := zerolog.Nop()
	cfg := driver.DefaultConfig()
	cfg.Dialer = dialer
	cfg.Logger = &nop
	cfg.Registerer = reg
	for _, opt := range opts {
		opt(cfg)
	}
	d, err := driver.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, reg
}

func withChildDrain(d time.Duration) func(*driver.Config) {
	return func(c *driver.Config) { c.ChildDrainTimeout = d }
}

func runAsync(d *driver.Driver) <-chan error {
	done := make(chan error, 1)
	go func() { done <- d.Run() }()
	return done
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
}

// recorder collects handler invocations made on the loop goroutine.
type recorder struct {
	mu     sync.Mutex
	data   []string
	stderr []string
	errors []string
	events []string
}

func (r *recorder) onData(b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, string(b))
	r.events = append(r.events, "data:"+string(b))
}

func (r *recorder) onStderr(b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stderr = append(r.stderr, string(b))
}

func (r *recorder) onError(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, reason)
	r.events = append(r.events, "error:"+reason)
}

func (r *recorder) Data() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.data...)
}

func (r *recorder) Stderr() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stderr...)
}

func (r *recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) joined() string {
	var s string
	for _, c := range r.Data() {
		s += c
	}
	return s
}

func bind(t *testing.T, d *driver.Driver, r *recorder) {
	t.Helper()
	require.NoError(t, d.OnData(r.onData))
	require.NoError(t, d.OnError(r.onError))
	require.NoError(t, d.OnStderr(r.onStderr))
}

// metricValue reads a counter or gauge from reg by full name.
func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		return m.GetGauge().GetValue()
	}
	return 0
}
