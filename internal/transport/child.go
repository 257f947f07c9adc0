// File: internal/transport/child.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Child process transport: argv is spawned with stdin, stdout and stderr
// redirected to pipes owned by the caller.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/multierr"

	"github.com/momentics/hioload-rpc/api"
)

type processChild struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	stderr    io.ReadCloser
	exited    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ api.Child = (*processChild)(nil)

// SpawnChild starts argv with all three standard streams piped. The context
// bounds the spawn only, not the lifetime of the process.
func (b *Backend) SpawnChild(ctx context.Context, argv []string) (api.Child, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: empty argv", api.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = childSysProcAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processChild{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		exited: make(chan struct{}),
	}, nil
}

func (c *processChild) Stdin() io.WriteCloser { return c.stdin }
func (c *processChild) Stdout() io.Reader     { return c.stdout }
func (c *processChild) Stderr() io.Reader     { return c.stderr }
func (c *processChild) Pid() int              { return c.cmd.Process.Pid }

// Wait reaps the process without touching its pipes, so output still
// buffered or held open by a grandchild stays readable. Exit status is not
// an error at this layer; only a failure to wait is.
func (c *processChild) Wait() error {
	defer close(c.exited)
	_, err := c.cmd.Process.Wait()
	return err
}

// Close closes all three pipes and kills the process if it has not exited.
func (c *processChild) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = multierr.Combine(c.stdin.Close(), c.stdout.Close(), c.stderr.Close())
		select {
		case <-c.exited:
		default:
			if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				c.closeErr = multierr.Append(c.closeErr, err)
			}
		}
	})
	return c.closeErr
}
