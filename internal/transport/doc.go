// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OS connection backends for hioload-rpc: TCP, local domain sockets (named
// pipes on windows), inherited stdio and spawned child processes, plus the
// read pump, buffered writer and signal registry the driver builds on.
// Platform differences are confined to build-tagged files and selected once
// by feature detection when a Backend is created.

package transport
