// File: driver/relay.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Relay of inbound events to the bound consumers. Everything here runs on
// the loop goroutine; the read pumps only post into the loop.

package driver

import (
	"errors"
	"io"
	"net"
	"os"

	"github.com/momentics/hioload-rpc/api"
)

// relayData delivers chunk directly when a data consumer is bound and
// appends it to the pending queue otherwise. Queued chunks always go first.
func (d *Driver) relayData(chunk []byte) {
	if d.terminated {
		return
	}
	d.metrics.BytesReceived.Add(float64(len(chunk)))
	h := d.onData.Load()
	if h == nil {
		d.pending.Add(chunk)
		d.pendingLen.Store(int64(d.pending.Length()))
		d.metrics.ChunksQueued.Inc()
		d.metrics.PendingChunks.Set(float64(d.pending.Length()))
		return
	}
	d.drainPending()
	(*h)(chunk)
}

// drainPending hands every queued chunk to the data consumer, oldest first.
func (d *Driver) drainPending() {
	if d.pending.Length() == 0 || d.errorDelivered {
		return
	}
	h := d.onData.Load()
	if h == nil {
		return
	}
	for d.pending.Length() > 0 {
		chunk := d.pending.Remove().([]byte)
		d.pendingLen.Store(int64(d.pending.Length()))
		d.metrics.PendingChunks.Set(float64(d.pending.Length()))
		(*h)(chunk)
	}
}

// relayStderr delivers a child's stderr bytes. They are never queued.
func (d *Driver) relayStderr(chunk []byte) {
	if d.errorDelivered {
		return
	}
	d.metrics.StderrBytes.Add(float64(len(chunk)))
	if h := d.onStderr.Load(); h != nil {
		(*h)(chunk)
	}
}

// relayError terminates the driver with reason. Only the first call counts.
func (d *Driver) relayError(reason string) {
	if d.terminated {
		return
	}
	d.terminated = true
	d.terminatedRaw.Store(true)
	d.reason = reason
	d.log.Debug().Str("reason", reason).Msg("transport terminated")
	d.deliverError()
	if d.State() == api.StateConnected {
		_ = d.loop.Stop()
	}
}

// deliverError hands the stored reason to the error consumer once. The
// reason is held back while chunks are queued for a data consumer that is
// not bound yet, so data always precedes the error.
func (d *Driver) deliverError() {
	if d.errorDelivered {
		return
	}
	h := d.onError.Load()
	if h == nil {
		return
	}
	d.drainPending()
	if d.pending.Length() > 0 {
		return
	}
	d.errorDelivered = true
	d.metrics.ErrorsRelayed.Inc()
	(*h)(d.reason)
}

// flushPending drains the queue and relays a held-back error once the
// queue is empty.
func (d *Driver) flushPending() {
	d.drainPending()
	if d.terminated {
		d.deliverError()
	}
}

// post schedules fn on the loop. It reports false once the loop is gone,
// which tells a read pump to stop.
func (d *Driver) post(fn func()) bool {
	return d.loop.CallSoon(fn) == nil
}

// reasonFor normalizes a terminal I/O error into a relay reason.
func reasonFor(err error) string {
	if err == nil || errors.Is(err, io.EOF) {
		return api.EOFReason
	}
	return err.Error()
}

// closedLocally reports errors caused by our own Close.
func closedLocally(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
