//go:build windows
// +build windows

// File: internal/transport/stdio_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Console handles are not pipes; the process's standard handles are
// duplicated into private OS handles before use.

package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-rpc/api"
)

func pipeFromConsole(s stdStream) (*os.File, error) {
	which := uint32(windows.STD_INPUT_HANDLE)
	if s == stdOut {
		which = uint32(windows.STD_OUTPUT_HANDLE)
	}
	h, err := windows.GetStdHandle(which)
	if err != nil {
		return nil, err
	}
	if h == 0 || h == windows.InvalidHandle {
		return nil, fmt.Errorf("%s: no standard handle", s)
	}
	proc := windows.CurrentProcess()
	var dup windows.Handle
	if err := windows.DuplicateHandle(proc, h, proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(dup), s.String()), nil
}

func dupDescriptor(stdStream) (*os.File, error) {
	return nil, api.ErrNotSupported
}
