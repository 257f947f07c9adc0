//go:build !linux
// +build !linux

// File: internal/transport/child_other.go
// Author: momentics <momentics@gmail.com>

package transport

import "syscall"

func childSysProcAttr() *syscall.SysProcAttr {
	return nil
}
