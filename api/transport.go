// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Downward contract: OS connection primitives consumed by the driver.

package api

import (
	"context"
	"io"
)

// Conn is an established bidirectional byte stream.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Child is a spawned process with redirected standard streams.
type Child interface {
	// Stdin is the write side (stream index 0).
	Stdin() io.WriteCloser
	// Stdout carries the primary data (stream index 1).
	Stdout() io.Reader
	// Stderr carries diagnostic output (stream index 2).
	Stderr() io.Reader
	// Wait blocks until the process exits. It does not close Stdout or
	// Stderr; output already written stays readable until Close.
	Wait() error
	// Pid returns the OS process id.
	Pid() int
	// Close closes all three streams and kills the process if it is still
	// running. Blocked reads on Stdout and Stderr return.
	Close() error
}

// Dialer establishes connections for every supported mode.
type Dialer interface {
	DialStream(ctx context.Context, host string, port int) (Conn, error)
	DialLocal(ctx context.Context, path string) (Conn, error)
	OpenStdin(ctx context.Context) (io.ReadCloser, error)
	OpenStdout(ctx context.Context) (io.WriteCloser, error)
	SpawnChild(ctx context.Context, argv []string) (Child, error)
	Features() TransportFeatures
}

// TransportFeatures describes platform capabilities detected once at startup.
type TransportFeatures struct {
	NamedPipes     bool // local sockets are served by named pipes
	ConsoleHandles bool // stdio handles must be converted to pipe handles
	Signals        bool // the loop can subscribe to OS signals
	ChildWatcher   bool // child exit is observed apart from its pipes, which Close can interrupt
	OS             string
}
