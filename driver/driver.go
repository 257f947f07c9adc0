// File: driver/driver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Driver lifecycle: construction, consumer bindings, send, run/stop/close.

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/control"
	"github.com/momentics/hioload-rpc/internal/concurrency"
	"github.com/momentics/hioload-rpc/internal/logging"
	"github.com/momentics/hioload-rpc/internal/transport"
)

// Driver owns one event loop and at most one connection.
type Driver struct {
	id      string
	cfg     Config
	log     zerolog.Logger
	dialer  api.Dialer
	loop    *concurrency.EventLoop
	metrics *control.Metrics
	probes  *control.DebugProbes
	signals *transport.SignalRegistry

	ctx    context.Context
	cancel context.CancelFunc

	state atomic.Int32
	mode  atomic.Int32

	onData   atomic.Pointer[api.DataHandler]
	onError  atomic.Pointer[api.ErrorHandler]
	onStderr atomic.Pointer[api.StderrHandler]

	writer atomic.Pointer[transport.Writer]

	mu        sync.Mutex
	resources []io.Closer // released by Close, in order

	// loop goroutine only
	pending        *queue.Queue
	terminated     bool
	reason         string
	errorDelivered bool

	// mirrors for DumpState
	pendingLen    atomic.Int64
	terminatedRaw atomic.Bool
}

var _ api.Scheduler = (*Driver)(nil)

// New creates a driver with a fresh loop and an empty pending queue. No
// connection exists yet.
func New(cfg *Config) (*Driver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = transport.DefaultReadSize
	}
	if c.ChildDrainTimeout <= 0 {
		c.ChildDrainTimeout = DefaultConfig().ChildDrainTimeout
	}
	if c.Dialer == nil {
		c.Dialer = transport.NewBackend()
	}
	base := log.Logger
	if c.Logger != nil {
		base = *c.Logger
	}

	id := uuid.NewString()
	metrics, err := control.NewMetrics(c.Registerer, prometheus.Labels{"driver": id})
	if err != nil {
		return nil, fmt.Errorf("driver metrics: %w", err)
	}

	d := &Driver{
		id:      id,
		cfg:     c,
		log:     logging.Component(base, "driver").With().Str("driver", id).Logger(),
		dialer:  c.Dialer,
		metrics: metrics,
		probes:  control.NewDebugProbes(),
		signals: transport.NewSignalRegistry(),
		pending: queue.New(),
	}
	d.loop = concurrency.NewEventLoop(d.log)
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.registerProbes()
	return d, nil
}

// ID returns the instance id used in logs and metric labels.
func (d *Driver) ID() string { return d.id }

// State returns the lifecycle state.
func (d *Driver) State() api.DriverState { return api.DriverState(d.state.Load()) }

// Mode returns the connection mode, ModeNone before any connect.
func (d *Driver) Mode() api.Mode { return api.Mode(d.mode.Load()) }

// Features returns the platform capabilities of the dialer in use.
func (d *Driver) Features() api.TransportFeatures { return d.dialer.Features() }

// OnData binds the data consumer. Binding during Run is allowed; queued
// chunks are delivered before the next inbound chunk.
func (d *Driver) OnData(h api.DataHandler) error {
	if h == nil {
		return api.ErrInvalidArgument
	}
	if !d.onData.CompareAndSwap(nil, &h) {
		return api.ErrBindingAlreadySet
	}
	// Flush anything queued without waiting for the next chunk.
	_ = d.loop.CallSoon(d.flushPending)
	return nil
}

// OnError binds the consumer of the single termination reason.
func (d *Driver) OnError(h api.ErrorHandler) error {
	if h == nil {
		return api.ErrInvalidArgument
	}
	if !d.onError.CompareAndSwap(nil, &h) {
		return api.ErrBindingAlreadySet
	}
	return nil
}

// OnStderr binds the consumer of a child's stderr bytes.
func (d *Driver) OnStderr(h api.StderrHandler) error {
	if h == nil {
		return api.ErrInvalidArgument
	}
	if !d.onStderr.CompareAndSwap(nil, &h) {
		return api.ErrBindingAlreadySet
	}
	return nil
}

// Send queues a copy of p for the write side and returns. Write failures are
// reported through the error relay, never here.
func (d *Driver) Send(p []byte) error {
	switch d.State() {
	case api.StateConnected:
	case api.StateClosed:
		return api.ErrDriverClosed
	default:
		return api.ErrNotConnected
	}
	w := d.writer.Load()
	if w == nil {
		return api.ErrNotConnected
	}
	if len(p) == 0 {
		return nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	if err := w.Enqueue(buf); err != nil {
		return api.ErrDriverClosed
	}
	return nil
}

// Run drains the pending queue and then executes loop callbacks until Stop,
// an error relay or Close. A driver that already terminated delivers what it
// still holds and returns.
func (d *Driver) Run() error {
	switch d.State() {
	case api.StateConnected:
	case api.StateClosed:
		return api.ErrDriverClosed
	default:
		return api.ErrNotConnected
	}
	d.log.Debug().Msg("entering event loop")
	err := d.loop.RunWith(d.startRun)
	d.log.Debug().Msg("exited event loop")
	if errors.Is(err, concurrency.ErrLoopClosed) {
		return api.ErrDriverClosed
	}
	return err
}

func (d *Driver) startRun() {
	d.flushPending()
	if d.terminated {
		_ = d.loop.Stop()
	}
}

// Stop asks Run to return once the callbacks queued ahead of it have run.
// Safe from any goroutine; a Stop issued while idle ends the next Run.
func (d *Driver) Stop() error {
	if d.State() == api.StateClosed {
		return api.ErrDriverClosed
	}
	if err := d.loop.Stop(); err != nil {
		return api.ErrDriverClosed
	}
	return nil
}

// CallSoon schedules fn on the loop goroutine. Safe from any goroutine.
func (d *Driver) CallSoon(fn func()) error {
	if fn == nil {
		return api.ErrInvalidArgument
	}
	if err := d.loop.CallSoon(fn); err != nil {
		return api.ErrDriverClosed
	}
	d.metrics.Callbacks.Inc()
	return nil
}

// Close releases the connection and the loop. A second Close returns
// ErrDriverClosed.
func (d *Driver) Close() error {
	prev := api.DriverState(d.state.Swap(int32(api.StateClosed)))
	if prev == api.StateClosed {
		return api.ErrDriverClosed
	}
	err := d.release()
	d.log.Debug().Str("from", prev.String()).Err(err).Msg("driver closed")
	return err
}

// release tears everything down. The state must already be Closed.
func (d *Driver) release() error {
	d.cancel()
	_ = d.loop.Close()
	if nums := d.signals.Teardown(); len(nums) > 0 {
		d.log.Debug().Ints("signals", nums).Msg("signal handlers removed")
	}

	d.mu.Lock()
	res := d.resources
	d.resources = nil
	w := d.writer.Load()
	d.mu.Unlock()

	if w != nil && !w.Close(d.cfg.FlushTimeout) {
		d.log.Warn().Int("chunks", w.Buffered()).Msg("send queue not flushed before close")
	}
	var err error
	for _, c := range res {
		err = multierr.Append(err, c.Close())
	}
	d.metrics.Unregister()
	return err
}

// DumpState returns debug probe output.
func (d *Driver) DumpState() map[string]any {
	return d.probes.DumpState()
}

func (d *Driver) registerProbes() {
	d.probes.RegisterProbe("id", func() any { return d.id })
	d.probes.RegisterProbe("state", func() any { return d.State().String() })
	d.probes.RegisterProbe("mode", func() any { return d.Mode().String() })
	d.probes.RegisterProbe("pending_chunks", func() any { return d.pendingLen.Load() })
	d.probes.RegisterProbe("loop_pending", func() any { return d.loop.Pending() })
	d.probes.RegisterProbe("signals", func() any { return d.signals.Registered() })
	d.probes.RegisterProbe("terminated", func() any { return d.terminatedRaw.Load() })
	control.RegisterPlatformProbes(d.probes, d.dialer.Features())
}
