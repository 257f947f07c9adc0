package concurrency_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/internal/concurrency"
)

func TestMailbox_FIFO(t *testing.T) {
	mb := concurrency.NewMailbox[int]()
	for i := 0; i < 100; i++ {
		require.NoError(t, mb.Put(i))
	}
	assert.Equal(t, 100, mb.Len())
	for i := 0; i < 100; i++ {
		v, ok := mb.TryTake()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := mb.TryTake()
	assert.False(t, ok)
}

func TestMailbox_WakeAfterPut(t *testing.T) {
	mb := concurrency.NewMailbox[string]()
	require.NoError(t, mb.Put("a"))
	require.NoError(t, mb.Put("b"))
	select {
	case <-mb.Wake():
	default:
		t.Fatal("expected pending wake-up")
	}
}

func TestMailbox_CloseKeepsQueuedItems(t *testing.T) {
	mb := concurrency.NewMailbox[int]()
	require.NoError(t, mb.Put(1))
	mb.Close()
	mb.Close()

	assert.ErrorIs(t, mb.Put(2), concurrency.ErrMailboxClosed)
	v, ok := mb.TryTake()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	<-mb.Closed()
}

func TestMailbox_ConcurrentProducers(t *testing.T) {
	mb := concurrency.NewMailbox[int]()
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = mb.Put(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*500, mb.Len())
}
