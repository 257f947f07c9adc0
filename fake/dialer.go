// Package fake
// Author: momentics <momentics@gmail.com>

package fake

import (
	"context"
	"io"
	"sync"

	"github.com/momentics/hioload-rpc/api"
)

// Dialer is a scripted api.Dialer. Each mode hands out the configured fake
// or fails with Err. Gate, when set, holds every dial until it is closed;
// StdoutGate holds only the stdout half of a stdio connect.
type Dialer struct {
	Conn   *Conn
	Stdin  *Conn
	Stdout *Conn
	Child  *Child

	// Platform is returned by Features.
	Platform api.TransportFeatures

	Err        error
	StdoutErr  error
	Gate       chan struct{}
	StdoutGate chan struct{}

	mu    sync.Mutex
	calls []string
}

var _ api.Dialer = (*Dialer)(nil)

// NewDialer returns a dialer with fresh fakes for every mode.
func NewDialer() *Dialer {
	return &Dialer{
		Conn:   NewConn(),
		Stdin:  NewConn(),
		Stdout: NewConn(),
		Child:  NewChild(),

		Platform: api.TransportFeatures{Signals: true, ChildWatcher: true, OS: "fake"},
	}
}

// Calls lists the dial operations performed, in order.
func (d *Dialer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *Dialer) enter(ctx context.Context, name string, gate chan struct{}) error {
	d.mu.Lock()
	d.calls = append(d.calls, name)
	d.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return d.Err
}

func (d *Dialer) DialStream(ctx context.Context, host string, port int) (api.Conn, error) {
	if err := d.enter(ctx, "stream", d.Gate); err != nil {
		return nil, err
	}
	return d.Conn, nil
}

func (d *Dialer) DialLocal(ctx context.Context, path string) (api.Conn, error) {
	if err := d.enter(ctx, "local", d.Gate); err != nil {
		return nil, err
	}
	return d.Conn, nil
}

func (d *Dialer) OpenStdin(ctx context.Context) (io.ReadCloser, error) {
	if err := d.enter(ctx, "stdin", d.Gate); err != nil {
		return nil, err
	}
	return d.Stdin, nil
}

func (d *Dialer) OpenStdout(ctx context.Context) (io.WriteCloser, error) {
	if err := d.enter(ctx, "stdout", d.StdoutGate); err != nil {
		return nil, err
	}
	if d.StdoutErr != nil {
		return nil, d.StdoutErr
	}
	return d.Stdout, nil
}

func (d *Dialer) SpawnChild(ctx context.Context, argv []string) (api.Child, error) {
	if err := d.enter(ctx, "child", d.Gate); err != nil {
		return nil, err
	}
	return d.Child, nil
}

func (d *Dialer) Features() api.TransportFeatures {
	return d.Platform
}
