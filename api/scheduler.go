// Package api
// Author: momentics
//
// Scheduler contract for marshalling callbacks onto a loop goroutine.

package api

// Scheduler runs callbacks on the goroutine that owns an event loop.
type Scheduler interface {
	// CallSoon schedules fn to run on the loop goroutine. Safe to call
	// from any goroutine.
	CallSoon(fn func()) error

	// Stop asks the running loop to return. Safe to call from any goroutine.
	Stop() error
}
