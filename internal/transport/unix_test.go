//go:build unix

package transport_test

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rpc/api"
	"github.com/momentics/hioload-rpc/internal/transport"
)

func shortSocketPath(t *testing.T) string {
	dir, err := os.MkdirTemp("", "hrpc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestDialLocal_UnixSocket(t *testing.T) {
	path := shortSocketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = c.Write([]byte("hi"))
	}()

	conn, err := transport.NewBackend().DialLocal(context.Background(), path)
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 2)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))
}

func TestSpawnChild_Streams(t *testing.T) {
	child, err := transport.NewBackend().SpawnChild(context.Background(),
		[]string{"/bin/sh", "-c", `read line; printf "%s\n" "$line"; printf 'warn\n' >&2`})
	require.NoError(t, err)
	defer child.Close()
	assert.Greater(t, child.Pid(), 0)

	_, err = child.Stdin().Write([]byte("echoed\n"))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		out, eout []byte
	)
	wg.Add(2)
	go func() { defer wg.Done(); out, _ = io.ReadAll(child.Stdout()) }()
	go func() { defer wg.Done(); eout, _ = io.ReadAll(child.Stderr()) }()
	wg.Wait()

	require.NoError(t, child.Wait())
	assert.Equal(t, "echoed\n", string(out))
	assert.Equal(t, "warn\n", string(eout))
}

func TestSpawnChild_ExitCodeIsNotAnError(t *testing.T) {
	child, err := transport.NewBackend().SpawnChild(context.Background(), []string{"/bin/sh", "-c", "exit 3"})
	require.NoError(t, err)
	_, _ = io.ReadAll(child.Stdout())
	_, _ = io.ReadAll(child.Stderr())
	assert.NoError(t, child.Wait())
	assert.NoError(t, child.Close())
}

func TestSpawnChild_WaitLeavesPipesReadable(t *testing.T) {
	child, err := transport.NewBackend().SpawnChild(context.Background(),
		[]string{"/bin/sh", "-c", "sleep 3 & printf ok"})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, child.Wait())
	assert.Less(t, time.Since(start), 2*time.Second)

	buf := make([]byte, 2)
	_, err = io.ReadFull(child.Stdout(), buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(buf))

	// the background sleep still holds stdout; Close ends the read
	read := make(chan error, 1)
	go func() {
		_, err := child.Stdout().Read(buf)
		read <- err
	}()
	require.NoError(t, child.Close())
	select {
	case err := <-read:
		assert.ErrorIs(t, err, os.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("read not interrupted by Close")
	}
}

func TestSpawnChild_CloseKillsRunningProcess(t *testing.T) {
	child, err := transport.NewBackend().SpawnChild(context.Background(), []string{"/bin/sh", "-c", "sleep 30"})
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() {
		_, _ = io.ReadAll(child.Stdout())
		_, _ = io.ReadAll(child.Stderr())
		waited <- child.Wait()
	}()
	require.NoError(t, child.Close())

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("child was not killed")
	}
}

func TestSpawnChild_MissingBinary(t *testing.T) {
	_, err := transport.NewBackend().SpawnChild(context.Background(), []string{"/nonexistent/hioload-rpc-child"})
	assert.Error(t, err)
}

func TestSignalRegistry_Symmetry(t *testing.T) {
	r := transport.NewSignalRegistry()
	got := make(chan int, 4)
	require.NoError(t, r.Setup([]int{int(syscall.SIGUSR1), int(syscall.SIGUSR2), int(syscall.SIGUSR1)}, func(n int) { got <- n }))
	assert.True(t, r.Active())
	assert.ErrorIs(t, r.Setup([]int{int(syscall.SIGHUP)}, func(int) {}), api.ErrAlreadyExists)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	select {
	case n := <-got:
		assert.Equal(t, int(syscall.SIGUSR1), n)
	case <-time.After(2 * time.Second):
		t.Fatal("signal not relayed")
	}

	registered := r.Registered()
	removed := r.Teardown()
	sort.Ints(registered)
	sort.Ints(removed)
	assert.Equal(t, registered, removed)
	assert.Len(t, removed, 2)
	assert.Nil(t, r.Teardown())
	assert.False(t, r.Active())
}

func TestSignalRegistry_EmptyAndInvalid(t *testing.T) {
	r := transport.NewSignalRegistry()
	require.NoError(t, r.Setup(nil, func(int) {}))
	assert.Empty(t, r.Teardown())

	assert.ErrorIs(t, r.Setup([]int{-4}, func(int) {}), api.ErrInvalidArgument)
	assert.False(t, r.Active())
	assert.Equal(t, "SIGINT", transport.SignalName(int(syscall.SIGINT)))
}
