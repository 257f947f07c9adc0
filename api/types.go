// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import (
	"fmt"
	"strings"
)

// EOFReason is relayed to the error handler when a stream ends without a
// more specific failure description.
const EOFReason = "EOF"

// DriverState enumerates the lifecycle of a transport driver.
type DriverState int32

const (
	StateCreated DriverState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s DriverState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Mode identifies one of the connection mechanisms.
type Mode int

const (
	ModeNone Mode = iota
	ModeStream
	ModeLocal
	ModeStdio
	ModeChild
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeLocal:
		return "local"
	case ModeStdio:
		return "stdio"
	case ModeChild:
		return "child"
	default:
		return "none"
	}
}

// ParseMode converts a textual mode name (as used in configuration) to a Mode.
// "tcp" and "socket" are accepted as aliases of stream and local.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "tcp":
		return ModeStream, nil
	case "local", "socket", "pipe":
		return ModeLocal, nil
	case "stdio":
		return ModeStdio, nil
	case "child":
		return ModeChild, nil
	}
	return ModeNone, fmt.Errorf("%w: unknown transport mode %q", ErrInvalidArgument, s)
}
