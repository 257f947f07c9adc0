// File: driver/connect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The four connection modes. Each dial runs on its own goroutine while the
// calling goroutine drives the loop until the dial resolves, so callbacks
// posted in the meantime (stdin data during a stdio connect, CallSoon work)
// are processed in order.

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/internal/concurrency"
	"github.com/momentics/hioload-rpc/internal/transport"
)

// ConnectStream opens a TCP connection to host:port.
func (d *Driver) ConnectStream(ctx context.Context, host string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d", api.ErrInvalidArgument, port)
	}
	if err := d.begin(api.ModeStream); err != nil {
		return err
	}
	target := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := await(ctx, d, func(ctx context.Context) (api.Conn, error) {
		return d.dialer.DialStream(ctx, host, port)
	})
	if err != nil {
		return d.failConnect(target, err)
	}
	return d.establish(target, conn)
}

// ConnectLocal opens a local domain socket, or the named pipe at path where
// the platform serves local endpoints by pipes.
func (d *Driver) ConnectLocal(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty local socket path", api.ErrInvalidArgument)
	}
	if err := d.begin(api.ModeLocal); err != nil {
		return err
	}
	conn, err := await(ctx, d, func(ctx context.Context) (api.Conn, error) {
		return d.dialer.DialLocal(ctx, path)
	})
	if err != nil {
		return d.failConnect(path, err)
	}
	return d.establish(path, conn)
}

// ConnectStdio binds the process's own stdin and stdout. Stdin is bound and
// read first; whatever arrives while stdout is being bound is queued.
func (d *Driver) ConnectStdio(ctx context.Context) error {
	if err := d.begin(api.ModeStdio); err != nil {
		return err
	}
	in, err := await(ctx, d, d.dialer.OpenStdin)
	if err != nil {
		return d.failConnect("stdin", err)
	}
	if err := d.adopt(in, nil); err != nil {
		return d.failConnect("stdin", err)
	}
	d.watchReader(in)
	d.log.Debug().Msg("native stdin connection successful")

	out, err := await(ctx, d, d.dialer.OpenStdout)
	if err != nil {
		return d.failConnect("stdout", err)
	}
	if err := d.adopt(out, out); err != nil {
		return d.failConnect("stdout", err)
	}
	d.log.Debug().Msg("native stdout connection successful")
	return d.finishConnect("stdio")
}

// ConnectChild spawns argv with piped standard streams. Stdout feeds the
// data consumer, stderr the stderr consumer, and process exit is relayed as
// end of stream whatever the exit code.
func (d *Driver) ConnectChild(ctx context.Context, argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return fmt.Errorf("%w: empty argv", api.ErrInvalidArgument)
	}
	if err := d.begin(api.ModeChild); err != nil {
		return err
	}
	target := argv[0]
	child, err := await(ctx, d, func(ctx context.Context) (api.Child, error) {
		return d.dialer.SpawnChild(ctx, argv)
	})
	if err != nil {
		return d.failConnect(target, err)
	}
	if err := d.adopt(child, child.Stdin()); err != nil {
		return d.failConnect(target, err)
	}
	if d.Features().ChildWatcher {
		d.watchChildExit(child)
	} else {
		d.watchChildStreams(child)
	}
	d.log.Debug().Int("pid", child.Pid()).Msg("child process started")
	return d.finishConnect(target)
}

// begin claims the single connect slot.
func (d *Driver) begin(mode api.Mode) error {
	if d.state.CompareAndSwap(int32(api.StateCreated), int32(api.StateConnecting)) {
		d.mode.Store(int32(mode))
		d.log.Debug().Str("mode", mode.String()).Msg("connecting")
		return nil
	}
	if d.State() == api.StateClosed {
		return api.ErrDriverClosed
	}
	return api.ErrAlreadyConnected
}

func (d *Driver) establish(target string, conn api.Conn) error {
	if err := d.adopt(conn, conn); err != nil {
		return d.failConnect(target, err)
	}
	d.watchReader(conn)
	return d.finishConnect(target)
}

func (d *Driver) finishConnect(target string) error {
	if !d.state.CompareAndSwap(int32(api.StateConnecting), int32(api.StateConnected)) {
		return d.failConnect(target, api.ErrDriverClosed)
	}
	d.log.Debug().Str("mode", d.Mode().String()).Str("target", target).Msg("connected")
	return nil
}

// failConnect leaves the driver Closed with nothing held and returns the
// setup failure.
func (d *Driver) failConnect(target string, cause error) error {
	mode := d.Mode().String()
	if api.DriverState(d.state.Swap(int32(api.StateClosed))) != api.StateClosed {
		if err := d.release(); err != nil {
			d.log.Debug().Err(err).Msg("release after failed connect")
		}
	}
	d.log.Warn().Err(cause).Str("mode", mode).Str("target", target).Msg("connect failed")
	return api.NewError(api.ErrCodeSetup, "connect failed").
		WithContext("mode", mode).
		WithContext("target", target).
		WithCause(cause)
}

// adopt registers c for release on Close and, when w is non-nil, starts the
// buffered writer on it.
func (d *Driver) adopt(c io.Closer, w io.Writer) error {
	d.mu.Lock()
	if d.State() == api.StateClosed {
		d.mu.Unlock()
		_ = c.Close()
		return api.ErrDriverClosed
	}
	d.resources = append(d.resources, c)
	if w != nil {
		d.writer.Store(transport.NewWriter(w, d.onWritten, d.onWriteError))
	}
	d.mu.Unlock()
	return nil
}

func (d *Driver) onWritten(n int) {
	d.metrics.BytesSent.Add(float64(n))
}

func (d *Driver) onWriteError(err error) {
	reason := reasonFor(err)
	d.post(func() { d.relayError(reason) })
}

// watchReader pumps r into the loop and relays its end.
func (d *Driver) watchReader(r io.Reader) {
	go func() {
		err := d.pump(r, d.relayData)
		reason := reasonFor(err)
		d.post(func() { d.relayError(reason) })
	}()
}

// pumpChild relays stdout and stderr until both end.
func (d *Driver) pumpChild(child api.Child) error {
	var g errgroup.Group
	g.Go(func() error { return d.pump(child.Stdout(), d.relayData) })
	g.Go(func() error { return d.pump(child.Stderr(), d.relayStderr) })
	return g.Wait()
}

// watchChildExit reaps the process as soon as it exits, independent of its
// pipes. Output still in flight gets ChildDrainTimeout to arrive; after that
// the pipes are closed, which ends any pump held open by a grandchild.
func (d *Driver) watchChildExit(child api.Child) {
	drained := make(chan error, 1)
	go func() { drained <- d.pumpChild(child) }()
	go func() {
		werr := child.Wait()
		d.log.Debug().Int("pid", child.Pid()).AnErr("wait", werr).Msg("child exited")
		timer := time.NewTimer(d.cfg.ChildDrainTimeout)
		defer timer.Stop()
		var perr error
		select {
		case perr = <-drained:
		case <-timer.C:
			d.log.Debug().Int("pid", child.Pid()).Msg("child output still open after exit")
			_ = child.Close()
			perr = <-drained
		}
		d.post(func() { d.relayError(childReason(perr)) })
	}()
}

// watchChildStreams reaps the process only once stdout and stderr are both
// drained.
func (d *Driver) watchChildStreams(child api.Child) {
	go func() {
		perr := d.pumpChild(child)
		werr := child.Wait()
		d.log.Debug().Int("pid", child.Pid()).AnErr("wait", werr).Msg("child exited")
		d.post(func() { d.relayError(childReason(perr)) })
	}()
}

func childReason(err error) string {
	if err != nil && !closedLocally(err) {
		return err.Error()
	}
	return api.EOFReason
}

// pump posts every chunk read from r to relay on the loop. A clean end of
// stream returns nil.
func (d *Driver) pump(r io.Reader, relay func([]byte)) error {
	err := transport.ReadPump(r, d.cfg.ReadBufferSize, func(chunk []byte) bool {
		return d.post(func() { relay(chunk) })
	})
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// await starts op on its own goroutine and drives the loop until it
// resolves. If the loop is stopped or closed first, a late result is
// released when it arrives.
func await[T io.Closer](ctx context.Context, d *Driver, op func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unhook := context.AfterFunc(d.ctx, cancel)
	defer unhook()

	p := concurrency.Go(func() (T, error) { return op(ctx) })
	err := d.loop.RunUntil(p.Done())
	if err == nil {
		select {
		case <-p.Done():
			v, err := p.Result()
			if err != nil && d.ctx.Err() != nil {
				return zero, api.ErrDriverClosed
			}
			return v, err
		default:
			err = api.ErrDriverClosed
		}
	}
	if errors.Is(err, concurrency.ErrLoopClosed) {
		err = api.ErrDriverClosed
	}
	p.Discard(func(v T) { _ = v.Close() })
	return zero, err
}
