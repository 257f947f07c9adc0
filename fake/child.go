// Package fake
// Author: momentics <momentics@gmail.com>

package fake

import (
	"io"
	"sync"
)

// Child is a scripted api.Child. Tests feed its stdout/stderr and end it
// with Exit.
type Child struct {
	StdinConn  *Conn
	StdoutConn *Conn
	StderrConn *Conn

	eofOnce  sync.Once
	reapOnce sync.Once
	exited   chan struct{}
	closed   chan struct{}
	closeMu  sync.Once
}

// NewChild creates a running fake child.
func NewChild() *Child {
	return &Child{
		StdinConn:  NewConn(),
		StdoutConn: NewConn(),
		StderrConn: NewConn(),
		exited:     make(chan struct{}),
		closed:     make(chan struct{}),
	}
}

func (c *Child) Stdin() io.WriteCloser { return c.StdinConn }
func (c *Child) Stdout() io.Reader     { return c.StdoutConn }
func (c *Child) Stderr() io.Reader     { return c.StderrConn }
func (c *Child) Pid() int              { return 4242 }

// Exit ends both output streams and lets Wait return.
func (c *Child) Exit() {
	c.eofOnce.Do(func() {
		c.StdoutConn.EOF()
		c.StderrConn.EOF()
	})
	c.Reap()
}

// Reap lets Wait return while stdout and stderr stay open, as when a
// grandchild inherited them.
func (c *Child) Reap() {
	c.reapOnce.Do(func() { close(c.exited) })
}

// Wait blocks until Exit or Reap.
func (c *Child) Wait() error {
	<-c.exited
	return nil
}

// Close closes stdin and terminates the child.
func (c *Child) Close() error {
	c.closeMu.Do(func() {
		close(c.closed)
		_ = c.StdinConn.Close()
		c.Exit()
	})
	return nil
}

// IsClosed reports whether Close has been called.
func (c *Child) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
