package concurrency_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/internal/concurrency"
)

func TestPending_Result(t *testing.T) {
	boom := errors.New("boom")
	p := concurrency.Go(func() (string, error) { return "", boom })
	<-p.Done()
	_, err := p.Result()
	assert.ErrorIs(t, err, boom)
}

func TestPending_Discard(t *testing.T) {
	release := make(chan string, 1)
	gate := make(chan struct{})
	p := concurrency.Go(func() (string, error) {
		<-gate
		return "conn", nil
	})
	p.Discard(func(v string) { release <- v })
	close(gate)

	select {
	case v := <-release:
		require.Equal(t, "conn", v)
	case <-time.After(time.Second):
		t.Fatal("late result was not released")
	}
}
