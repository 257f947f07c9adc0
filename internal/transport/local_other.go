//go:build !windows
// +build !windows

// File: internal/transport/local_other.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"context"

	"github.com/momentics/hioload-rpc/api"
)

func dialNamedPipe(context.Context, string) (api.Conn, error) {
	return nil, api.ErrNotSupported
}
