// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the transport contracts.

package fake

import (
	"io"
	"net"
	"sync"
)

type readEvent struct {
	data []byte
	err  error
}

// Conn is an in-memory api.Conn. Every Feed is returned by exactly one Read
// (split only if the caller's buffer is smaller), so chunk boundaries are
// deterministic in tests.
type Conn struct {
	events   chan readEvent
	leftover []byte // reader goroutine only

	mu       sync.Mutex
	written  [][]byte
	writeErr error

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn creates an open fake connection.
func NewConn() *Conn {
	return &Conn{
		events: make(chan readEvent, 1024),
		closed: make(chan struct{}),
	}
}

// Feed queues b to be returned by a future Read.
func (c *Conn) Feed(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	c.events <- readEvent{data: cp}
}

// FeedString is Feed for string literals.
func (c *Conn) FeedString(s string) {
	c.Feed([]byte(s))
}

// Fail makes the Read after all queued chunks return err.
func (c *Conn) Fail(err error) {
	c.events <- readEvent{err: err}
}

// EOF is Fail(io.EOF).
func (c *Conn) EOF() {
	c.Fail(io.EOF)
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	if len(c.leftover) > 0 {
		n := copy(p, c.leftover)
		c.leftover = c.leftover[n:]
		return n, nil
	}
	select {
	case ev := <-c.events:
		if ev.err != nil {
			return 0, ev.err
		}
		n := copy(p, ev.data)
		c.leftover = ev.data[n:]
		return n, nil
	case <-c.closed:
		return 0, net.ErrClosed
	}
}

// Write implements io.Writer and records a copy of p.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IsClosed() {
		return 0, net.ErrClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	c.written = append(c.written, cp)
	return len(p), nil
}

// SetWriteError configures the connection to fail every Write with err.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// Written returns all chunks that have been written.
func (c *Conn) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.written))
	copy(out, c.written)
	return out
}

// WrittenString returns everything written, concatenated.
func (c *Conn) WrittenString() string {
	var s []byte
	for _, w := range c.Written() {
		s = append(s, w...)
	}
	return string(s)
}

// Close implements io.Closer. Pending Reads return net.ErrClosed.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
