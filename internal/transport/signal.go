// File: internal/transport/signal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Signal registry: subscribes a set of signal numbers and relays each
// delivery as an int. Teardown unsubscribes exactly what Setup subscribed.

package transport

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/momentics/hioload-rpc/api"
)

// SignalRegistry tracks one active subscription set.
type SignalRegistry struct {
	mu         sync.Mutex
	active     bool
	registered []int
	ch         chan os.Signal
	quit       chan struct{}
}

// NewSignalRegistry returns an empty registry.
func NewSignalRegistry() *SignalRegistry {
	return &SignalRegistry{}
}

// Setup subscribes signums and calls relay for every delivery, from a
// dedicated goroutine. Duplicates are collapsed. Where the platform cannot
// deliver signals the registry is recorded empty and nil is returned.
func (r *SignalRegistry) Setup(signums []int, relay func(signum int)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return api.ErrAlreadyExists
	}
	if !signalsSupported {
		r.active = true
		r.registered = []int{}
		return nil
	}

	seen := make(map[int]bool, len(signums))
	nums := make([]int, 0, len(signums))
	sigs := make([]os.Signal, 0, len(signums))
	for _, n := range signums {
		if seen[n] {
			continue
		}
		s, err := toSignal(n)
		if err != nil {
			return err
		}
		seen[n] = true
		nums = append(nums, n)
		sigs = append(sigs, s)
	}

	r.active = true
	r.registered = nums
	if len(sigs) == 0 {
		return nil
	}
	r.ch = make(chan os.Signal, len(sigs))
	r.quit = make(chan struct{})
	signal.Notify(r.ch, sigs...)
	go relayLoop(r.ch, r.quit, relay)
	return nil
}

// Teardown unsubscribes everything Setup registered and returns those
// signal numbers. A second Teardown returns nil.
func (r *SignalRegistry) Teardown() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return nil
	}
	if r.ch != nil {
		signal.Stop(r.ch)
		close(r.quit)
		r.ch, r.quit = nil, nil
	}
	out := r.registered
	r.registered = nil
	r.active = false
	return out
}

// Registered returns a copy of the subscribed signal numbers.
func (r *SignalRegistry) Registered() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.registered))
	copy(out, r.registered)
	return out
}

// Active reports whether Setup has been called without a matching Teardown.
func (r *SignalRegistry) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func relayLoop(ch <-chan os.Signal, quit <-chan struct{}, relay func(int)) {
	for {
		select {
		case s := <-ch:
			if n, ok := s.(syscall.Signal); ok {
				relay(int(n))
			}
		case <-quit:
			return
		}
	}
}
