package api_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/api"
)

func TestParseMode(t *testing.T) {
	cases := map[string]api.Mode{
		"stream": api.ModeStream,
		"TCP":    api.ModeStream,
		"local":  api.ModeLocal,
		"pipe":   api.ModeLocal,
		" stdio": api.ModeStdio,
		"child":  api.ModeChild,
	}
	for in, want := range cases {
		got, err := api.ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := api.ParseMode("carrier-pigeon")
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "created", api.StateCreated.String())
	assert.Equal(t, "connecting", api.StateConnecting.String())
	assert.Equal(t, "connected", api.StateConnected.String())
	assert.Equal(t, "closed", api.StateClosed.String())
	assert.Equal(t, "unknown", api.DriverState(42).String())
	assert.Equal(t, "child", api.ModeChild.String())
	assert.Equal(t, "none", api.ModeNone.String())
}

func TestSetupErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := api.NewError(api.ErrCodeSetup, "connect failed").
		WithContext("mode", "stream").
		WithCause(cause)

	assert.True(t, api.IsSetupFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "mode:stream")
	assert.False(t, api.IsSetupFailure(cause))
	assert.Equal(t, "setup", api.ErrCodeSetup.String())
}
