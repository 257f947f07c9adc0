//go:build windows
// +build windows

// File: internal/transport/local_windows.go
// Author: momentics <momentics@gmail.com>
//
// Named pipes stand in for domain sockets on windows.

package transport

import (
	"context"

	"github.com/Microsoft/go-winio"

	"github.com/momentics/hioload-rpc/api"
)

func dialNamedPipe(ctx context.Context, path string) (api.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
