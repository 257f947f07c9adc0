// File: api/handler.go
// Package api defines consumer handler types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// DataHandler receives chunks from the primary input channel, in arrival order.
type DataHandler func(data []byte)

// ErrorHandler receives the single termination reason of a connection.
type ErrorHandler func(reason string)

// StderrHandler receives bytes written by a child process to its stderr.
type StderrHandler func(data []byte)

// SignalHandler receives OS signal numbers delivered into the loop.
type SignalHandler func(signum int)
