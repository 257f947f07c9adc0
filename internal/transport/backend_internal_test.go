package transport

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-rpc/api"
)

func TestBackendSelectsNamedPipeStrategy(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("named pipes are the native strategy here")
	}
	b := newBackend(api.TransportFeatures{NamedPipes: true, ConsoleHandles: true, OS: "test"})
	_, err := b.DialLocal(context.Background(), "/tmp/nowhere.sock")
	assert.ErrorIs(t, err, api.ErrNotSupported)
	_, err = b.OpenStdin(context.Background())
	assert.ErrorIs(t, err, api.ErrNotSupported)
}
