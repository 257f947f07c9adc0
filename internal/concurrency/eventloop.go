// File: internal/concurrency/eventloop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventLoop executes callbacks one at a time on whichever goroutine calls
// Run. Work from other goroutines enters only through CallSoon, which parks
// the callback in a Mailbox and wakes the loop. Stop is itself a scheduled
// callback, so a stop requested while the loop is idle is honoured by the
// next Run after it has processed what was already queued.

package concurrency

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-rpc/api"
)

// TaskFunc is a unit of work executed on the loop goroutine.
type TaskFunc func()

var _ api.Scheduler = (*EventLoop)(nil)

// EventLoop is a single-consumer callback executor.
type EventLoop struct {
	tasks    *Mailbox[TaskFunc]
	closeCh  chan struct{}
	closed   atomic.Bool
	running  atomic.Bool
	stopping bool // loop goroutine only
	log      zerolog.Logger
}

// NewEventLoop creates an idle loop.
func NewEventLoop(log zerolog.Logger) *EventLoop {
	return &EventLoop{
		tasks:   NewMailbox[TaskFunc](),
		closeCh: make(chan struct{}),
		log:     log,
	}
}

// CallSoon schedules fn on the loop goroutine. Safe from any goroutine.
func (el *EventLoop) CallSoon(fn func()) error {
	if el.closed.Load() {
		return ErrLoopClosed
	}
	if err := el.tasks.Put(fn); err != nil {
		return ErrLoopClosed
	}
	return nil
}

// Stop makes the current (or next) Run return once the callbacks queued
// ahead of it have executed.
func (el *EventLoop) Stop() error {
	return el.CallSoon(func() { el.stopping = true })
}

// Pending returns the number of callbacks waiting to execute.
func (el *EventLoop) Pending() int {
	return el.tasks.Len()
}

// Running reports whether some goroutine is inside Run.
func (el *EventLoop) Running() bool {
	return el.running.Load()
}

// Run executes callbacks until Stop or Close.
func (el *EventLoop) Run() error {
	return el.run(nil, nil)
}

// RunWith executes first on the loop goroutine and then behaves like Run.
func (el *EventLoop) RunWith(first TaskFunc) error {
	return el.run(first, nil)
}

// RunUntil executes callbacks until done is closed. A Stop observed before
// that returns api.ErrLoopStopped.
func (el *EventLoop) RunUntil(done <-chan struct{}) error {
	if done == nil {
		return api.ErrInvalidArgument
	}
	return el.run(nil, done)
}

func (el *EventLoop) run(first TaskFunc, done <-chan struct{}) error {
	if el.closed.Load() {
		return ErrLoopClosed
	}
	if !el.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer el.running.Store(false)

	if first != nil {
		el.execute(first)
	}
	for {
		if el.stopping {
			el.stopping = false
			if done != nil {
				return api.ErrLoopStopped
			}
			return nil
		}
		if done != nil {
			select {
			case <-done:
				return nil
			default:
			}
		}
		select {
		case <-el.closeCh:
			return nil
		default:
		}

		if fn, ok := el.tasks.TryTake(); ok {
			el.execute(fn)
			continue
		}

		select {
		case <-el.tasks.Wake():
		case <-done:
		case <-el.closeCh:
		}
	}
}

// execute runs fn, keeping the loop alive if it panics.
func (el *EventLoop) execute(fn TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			el.log.Error().Interface("panic", r).Msg("event loop callback panicked")
		}
	}()
	fn()
}

// Close wakes a blocked Run and rejects further callbacks. Callbacks still
// queued are dropped.
func (el *EventLoop) Close() error {
	if !el.closed.CompareAndSwap(false, true) {
		return ErrLoopClosed
	}
	close(el.closeCh)
	el.tasks.Close()
	return nil
}
