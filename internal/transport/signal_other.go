//go:build !unix

// File: internal/transport/signal_other.go
// Author: momentics <momentics@gmail.com>
//
// The loop cannot subscribe to signals here; the registry stays empty.

package transport

import (
	"fmt"
	"os"

	"github.com/momentics/hioload-rpc/api"
)

const signalsSupported = false

func toSignal(int) (os.Signal, error) {
	return nil, api.ErrNotSupported
}

// SignalName returns a printable label for signum.
func SignalName(signum int) string {
	return fmt.Sprintf("signal %d", signum)
}
