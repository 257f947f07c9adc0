//go:build linux
// +build linux

// File: internal/transport/child_linux.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// childSysProcAttr makes the kernel kill the child if we die first.
func childSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: unix.SIGKILL}
}
