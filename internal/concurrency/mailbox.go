// File: internal/concurrency/mailbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded multi-producer/single-consumer queue paired with a wake channel.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// Mailbox is an unbounded FIFO. Any goroutine may Put; a single consumer
// drains it with TryTake and parks on Wake when it runs dry.
type Mailbox[T any] struct {
	mu       sync.Mutex
	items    *queue.Queue
	wake     chan struct{}
	closedCh chan struct{}
	closed   bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		items:    queue.New(),
		wake:     make(chan struct{}, 1),
		closedCh: make(chan struct{}),
	}
}

// Put appends v and wakes the consumer. Returns ErrMailboxClosed after Close.
func (m *Mailbox[T]) Put(v T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMailboxClosed
	}
	m.items.Add(v)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
		// a wake-up is already pending
	}
	return nil
}

// TryTake removes the oldest item. Items put before Close remain takeable.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return m.items.Remove().(T), true
}

// Wake fires at least once after every Put.
func (m *Mailbox[T]) Wake() <-chan struct{} {
	return m.wake
}

// Closed is closed by Close.
func (m *Mailbox[T]) Closed() <-chan struct{} {
	return m.closedCh
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Length()
}

// Close rejects further Puts. It is safe to call more than once.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.closedCh)
}
