// File: internal/concurrency/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pending holds the outcome of an operation started on another goroutine.

package concurrency

import "github.com/momentics/hioload-rpc/api"

var _ api.Awaitable[int] = (*Pending[int])(nil)

// Pending is a one-shot result slot.
type Pending[T any] struct {
	done chan struct{}
	res  api.Result[T]
}

// Go runs fn on a new goroutine and returns its pending result.
func Go[T any](fn func() (T, error)) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.res.Value, p.res.Err = fn()
	}()
	return p
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result blocks until fn has returned and reports its outcome.
func (p *Pending[T]) Result() (T, error) {
	<-p.done
	return p.res.Value, p.res.Err
}

// Discard hands a late result to release once it arrives. Used when the
// waiter gave up before the operation finished.
func (p *Pending[T]) Discard(release func(T)) {
	go func() {
		v, err := p.Result()
		if err == nil {
			release(v)
		}
	}()
}
