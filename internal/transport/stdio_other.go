//go:build !unix && !windows

// File: internal/transport/stdio_other.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"os"

	"github.com/momentics/hioload-rpc/api"
)

func dupDescriptor(stdStream) (*os.File, error) {
	return nil, api.ErrNotSupported
}

func pipeFromConsole(stdStream) (*os.File, error) {
	return nil, api.ErrNotSupported
}
