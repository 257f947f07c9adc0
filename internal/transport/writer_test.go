package transport_test

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/internal/transport"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriter_OrderAndFlush(t *testing.T) {
	var out lockedBuffer
	var written atomic.Int64
	w := transport.NewWriter(&out, func(n int) { written.Add(int64(n)) }, nil)
	for _, s := range []string{"he", "llo", " ", "world"} {
		require.NoError(t, w.Enqueue([]byte(s)))
	}
	assert.True(t, w.Close(time.Second))
	assert.Equal(t, "hello world", out.String())
	assert.EqualValues(t, 11, written.Load())
	assert.Error(t, w.Enqueue([]byte("late")))
}

func TestWriter_FailureReportedOnce(t *testing.T) {
	boom := errors.New("broken pipe")
	var failures atomic.Int32
	w := transport.NewWriter(failingWriter{err: boom}, nil, func(err error) {
		assert.ErrorIs(t, err, boom)
		failures.Add(1)
	})
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Enqueue([]byte("x")))
	}
	require.True(t, w.Close(time.Second))
	assert.EqualValues(t, 1, failures.Load())
}

func TestWriter_CloseTimesOutOnStuckWriter(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	w := transport.NewWriter(writerFunc(func(p []byte) (int, error) {
		<-block
		return len(p), nil
	}), nil, nil)
	require.NoError(t, w.Enqueue([]byte("stuck")))
	assert.False(t, w.Close(20*time.Millisecond))
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
