// File: cmd/hioload-rpc/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// hioload-rpc connects to an RPC peer over one of the supported transports,
// logs what arrives and optionally sends a payload. It stops on SIGINT or
// SIGTERM, or when the peer goes away.
//
//	hioload-rpc --mode local --path /run/user/1000/nvim.sock --send $'\x94\x00\x01...'
//	hioload-rpc --mode child -- nvim --embed --headless

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/control"
	"github.com/momentics/hioload-rpc/driver"
	"github.com/momentics/hioload-rpc/internal/logging"
	"github.com/momentics/hioload-rpc/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("hioload-rpc failed")
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("hioload-rpc", pflag.ContinueOnError)
	fs.String("config", "", "configuration file (yaml, toml or json)")
	fs.String("send", "", "payload written once connected")
	fs.String("mode", "stream", "transport: stream, local, stdio or child")
	fs.String("host", "127.0.0.1", "stream mode host")
	fs.Int("port", 6666, "stream mode port")
	fs.String("path", "", "local socket or named pipe path")
	fs.StringArray("argv", nil, "child mode argument, repeatable (or pass the command line after --)")
	fs.Duration("connect-timeout", 10*time.Second, "per-attempt connect timeout")
	fs.Uint64("connect-retries", 0, "connect retries with exponential backoff")
	fs.Int("read-buffer", transport.DefaultReadSize, "read buffer size in bytes")
	fs.Duration("flush-timeout", time.Second, "how long close waits for queued sends")
	fs.IntSlice("signal", nil, "signal numbers that stop the loop (default SIGINT, SIGTERM)")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "console", "log format: console or json")
	return fs
}

// loadConfig parses args and merges them over the config file and
// environment. Positional arguments after -- become the child argv verbatim.
func loadConfig(args []string) (*control.Config, *pflag.FlagSet, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	for _, a := range fs.Args() {
		if err := fs.Set("argv", a); err != nil {
			return nil, nil, err
		}
	}
	configPath, _ := fs.GetString("config")
	cfg, err := control.Load(configPath, fs)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, fs, nil
}

func run(args []string) error {
	cfg, fs, err := loadConfig(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Logger = logger
	dcfg := driver.ConfigFrom(cfg)
	dcfg.Logger = &logger

	d, err := connect(cfg, dcfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil && !errors.Is(err, api.ErrDriverClosed) {
			logger.Warn().Err(err).Msg("close")
		}
	}()

	bindConsole(d, logger)

	signals := cfg.Signals
	if len(signals) == 0 {
		signals = []int{int(syscall.SIGINT), int(syscall.SIGTERM)}
	}
	if err := d.SetSignalHandlers(func(signum int) {
		logger.Info().Str("signal", transport.SignalName(signum)).Msg("stopping")
		_ = d.Stop()
	}, signals...); err != nil {
		return fmt.Errorf("install signal handlers: %w", err)
	}

	if payload, _ := fs.GetString("send"); payload != "" {
		if err := d.Send([]byte(payload)); err != nil {
			return err
		}
	}

	logger.Info().Str("driver", d.ID()).Str("mode", d.Mode().String()).Msg("connected")
	return d.Run()
}

// bindConsole reports traffic on the log. Stdout may be the transport
// itself, so nothing is printed there.
func bindConsole(d *driver.Driver, logger zerolog.Logger) {
	_ = d.OnData(func(b []byte) {
		logger.Info().Int("bytes", len(b)).Str("data", fmt.Sprintf("%q", b)).Msg("received")
	})
	_ = d.OnStderr(func(b []byte) {
		logger.Warn().Str("stderr", fmt.Sprintf("%q", b)).Msg("child stderr")
	})
	_ = d.OnError(func(reason string) {
		logger.Info().Str("reason", reason).Msg("transport terminated")
	})
}

// connect builds a fresh driver per attempt, since a failed connect leaves
// its driver closed.
func connect(cfg *control.Config, dcfg *driver.Config, logger zerolog.Logger) (*driver.Driver, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	var d *driver.Driver
	op := func() error {
		nd, err := driver.New(dcfg)
		if err != nil {
			return backoff.Permanent(err)
		}
		ctx := context.Background()
		if cfg.Transport.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Transport.ConnectTimeout)
			defer cancel()
		}
		if err := dial(ctx, nd, mode, cfg.Transport); err != nil {
			if !api.IsSetupFailure(err) {
				_ = nd.Close()
				return backoff.Permanent(err)
			}
			return err
		}
		d = nd
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Transport.ConnectRetries)
	err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("connect attempt failed")
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// dial dispatches to the connect operation for mode.
func dial(ctx context.Context, d *driver.Driver, mode api.Mode, tc control.TransportConfig) error {
	switch mode {
	case api.ModeStream:
		return d.ConnectStream(ctx, tc.Host, tc.Port)
	case api.ModeLocal:
		return d.ConnectLocal(ctx, tc.Path)
	case api.ModeStdio:
		return d.ConnectStdio(ctx)
	case api.ModeChild:
		return d.ConnectChild(ctx, tc.Argv)
	}
	return fmt.Errorf("%w: mode %s", api.ErrNotSupported, mode)
}
