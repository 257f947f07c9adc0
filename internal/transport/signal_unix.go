//go:build unix

// File: internal/transport/signal_unix.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-rpc/api"
)

const signalsSupported = true

func toSignal(n int) (os.Signal, error) {
	s := syscall.Signal(n)
	if n <= 0 || unix.SignalName(s) == "" {
		return nil, fmt.Errorf("%w: unknown signal %d", api.ErrInvalidArgument, n)
	}
	return s, nil
}

// SignalName returns the conventional name of signum, e.g. "SIGINT".
func SignalName(signum int) string {
	if name := unix.SignalName(syscall.Signal(signum)); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", signum)
}
