// File: driver/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package driver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/control"
	"github.com/momentics/hioload-rpc/internal/logging"
	"github.com/momentics/hioload-rpc/internal/transport"
)

// Config holds parameters fixed for the lifetime of a Driver.
type Config struct {
	ReadBufferSize    int                   // Scratch buffer per read pump
	FlushTimeout      time.Duration         // How long Close waits for queued sends
	ChildDrainTimeout time.Duration         // Output drain allowed after a child exits
	Logger            *zerolog.Logger       // nil selects the global zerolog logger
	Dialer            api.Dialer            // nil selects the OS backend
	Registerer        prometheus.Registerer // nil keeps metrics in a private registry
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:    transport.DefaultReadSize, // 64 KiB
		FlushTimeout:      time.Second,
		ChildDrainTimeout: 250 * time.Millisecond,
	}
}

// ConfigFrom maps loaded file/env/flag settings onto a driver Config. The
// logger is built from the log section.
func ConfigFrom(c *control.Config) *Config {
	cfg := DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.ReadBufferSize > 0 {
		cfg.ReadBufferSize = c.ReadBufferSize
	}
	if c.WriteFlushTimeout > 0 {
		cfg.FlushTimeout = c.WriteFlushTimeout
	}
	l := logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format})
	cfg.Logger = &l
	return cfg
}
