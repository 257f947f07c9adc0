// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent facade over the OS connection primitives. Strategies
// that differ per platform are chosen once, from DetectFeatures, when the
// Backend is built.

package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/momentics/hioload-rpc/api"
)

// DefaultKeepAlive is the TCP keep-alive period for stream connections.
const DefaultKeepAlive = 30 * time.Second

type stdStream int

const (
	stdIn stdStream = iota
	stdOut
)

func (s stdStream) String() string {
	if s == stdIn {
		return "stdin"
	}
	return "stdout"
}

// Backend implements api.Dialer against the real operating system.
type Backend struct {
	features  api.TransportFeatures
	keepAlive time.Duration
	dialLocal func(ctx context.Context, path string) (api.Conn, error)
	openStd   func(s stdStream) (*os.File, error)
}

var _ api.Dialer = (*Backend)(nil)

// NewBackend detects platform features and binds the matching strategies.
func NewBackend() *Backend {
	return newBackend(DetectFeatures())
}

func newBackend(f api.TransportFeatures) *Backend {
	b := &Backend{features: f, keepAlive: DefaultKeepAlive}
	if f.NamedPipes {
		b.dialLocal = dialNamedPipe
	} else {
		b.dialLocal = dialUnixSocket
	}
	if f.ConsoleHandles {
		b.openStd = pipeFromConsole
	} else {
		b.openStd = dupDescriptor
	}
	return b
}

// Features returns the capabilities the Backend was built for.
func (b *Backend) Features() api.TransportFeatures {
	return b.features
}

// DialStream opens a TCP connection with Nagle disabled.
func (b *Backend) DialStream(ctx context.Context, host string, port int) (api.Conn, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d", api.ErrInvalidArgument, port)
	}
	d := net.Dialer{KeepAlive: b.keepAlive}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

// DialLocal connects to a domain socket, or a named pipe where local
// sockets are served by pipes.
func (b *Backend) DialLocal(ctx context.Context, path string) (api.Conn, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty local socket path", api.ErrInvalidArgument)
	}
	return b.dialLocal(ctx, path)
}

// OpenStdin returns a private handle on the process's standard input.
func (b *Backend) OpenStdin(ctx context.Context) (io.ReadCloser, error) {
	f, err := b.openStdStream(ctx, stdIn)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// OpenStdout returns a private handle on the process's standard output.
func (b *Backend) OpenStdout(ctx context.Context) (io.WriteCloser, error) {
	f, err := b.openStdStream(ctx, stdOut)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b *Backend) openStdStream(ctx context.Context, s stdStream) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := b.openStd(s)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s, err)
	}
	return f, nil
}

func dialUnixSocket(ctx context.Context, path string) (api.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
