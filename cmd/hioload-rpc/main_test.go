package main

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/control"
	"github.com/momentics/hioload-rpc/driver"
	"github.com/momentics/hioload-rpc/fake"
)

func testDriverConfig(dialer api.Dialer) *driver.Config {
	nop := zerolog.Nop()
	cfg := driver.DefaultConfig()
	cfg.Dialer = dialer
	cfg.Logger = &nop
	return cfg
}

func TestLoadConfigKeepsArgvVerbatim(t *testing.T) {
	cfg, _, err := loadConfig([]string{"--mode", "child", "--", "nvim", "--cmd", "set rtp+=a,b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nvim", "--cmd", "set rtp+=a,b"}, cfg.Transport.Argv)
}

func TestLoadConfigRepeatedArgvFlag(t *testing.T) {
	cfg, _, err := loadConfig([]string{"--mode", "child", "--argv", "nvim", "--argv=--cmd=a,b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nvim", "--cmd=a,b"}, cfg.Transport.Argv)
}

func TestDialDispatch(t *testing.T) {
	tc := control.TransportConfig{Host: "127.0.0.1", Port: 6666, Path: "/run/nvim.sock", Argv: []string{"nvim"}}
	cases := map[api.Mode]string{
		api.ModeStream: "stream",
		api.ModeLocal:  "local",
		api.ModeChild:  "child",
	}
	for mode, call := range cases {
		dialer := fake.NewDialer()
		d, err := driver.New(testDriverConfig(dialer))
		require.NoError(t, err)
		require.NoError(t, dial(context.Background(), d, mode, tc))
		assert.Equal(t, []string{call}, dialer.Calls())
		assert.Equal(t, mode, d.Mode())
		require.NoError(t, d.Close())
	}

	d, err := driver.New(testDriverConfig(fake.NewDialer()))
	require.NoError(t, err)
	defer d.Close()
	assert.ErrorIs(t, dial(context.Background(), d, api.ModeNone, tc), api.ErrNotSupported)
}

func TestConnectRetriesSetupFailures(t *testing.T) {
	dialer := fake.NewDialer()
	dialer.Err = errors.New("connection refused")

	cfg, err := control.Load("", nil)
	require.NoError(t, err)
	cfg.Transport.ConnectRetries = 2

	_, err = connect(cfg, testDriverConfig(dialer), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, api.IsSetupFailure(err))
	assert.Len(t, dialer.Calls(), 3)
}

func TestConnectSucceeds(t *testing.T) {
	dialer := fake.NewDialer()
	cfg, err := control.Load("", nil)
	require.NoError(t, err)

	d, err := connect(cfg, testDriverConfig(dialer), zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, api.StateConnected, d.State())
	assert.Equal(t, []string{"stream"}, dialer.Calls())
}
