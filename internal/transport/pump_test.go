package transport_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/internal/transport"
)

func TestReadPump_ChunksUntilEOF(t *testing.T) {
	var chunks []string
	err := transport.ReadPump(iotest.OneByteReader(strings.NewReader("abc")), 16, func(c []byte) bool {
		chunks = append(chunks, string(c))
		return true
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"a", "b", "c"}, chunks)
}

func TestReadPump_ChunksAreIndependent(t *testing.T) {
	var chunks [][]byte
	r := iotest.HalfReader(strings.NewReader("hello world"))
	_ = transport.ReadPump(r, 4, func(c []byte) bool {
		chunks = append(chunks, c)
		return true
	})
	var joined []byte
	for _, c := range chunks {
		joined = append(joined, c...)
	}
	assert.Equal(t, "hello world", string(joined))
	require.Greater(t, len(chunks), 1)
}

func TestReadPump_StopAndError(t *testing.T) {
	calls := 0
	err := transport.ReadPump(iotest.OneByteReader(strings.NewReader("xyz")), 0, func([]byte) bool {
		calls++
		return false
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	err = transport.ReadPump(iotest.ErrReader(boom), 8, func([]byte) bool { return true })
	assert.ErrorIs(t, err, boom)
}
