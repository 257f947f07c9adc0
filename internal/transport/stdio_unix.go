//go:build unix

// File: internal/transport/stdio_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Standard streams are duplicated and switched to non-blocking mode so the
// runtime poller can drive them and Close interrupts a pending Read.

package transport

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-rpc/api"
)

func dupDescriptor(s stdStream) (*os.File, error) {
	src := unix.Stdin
	if s == stdOut {
		src = unix.Stdout
	}
	fd, err := unix.Dup(src)
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), s.String()), nil
}

func pipeFromConsole(stdStream) (*os.File, error) {
	return nil, api.ErrNotSupported
}
