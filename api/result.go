// Package api
// Author: momentics@gmail.com
//
// Generic result and completion contracts.

package api

// Result wraps any payload or error.
type Result[T any] struct {
	Value T
	Err   error
}

// Awaitable is an operation whose completion can be observed.
type Awaitable[T any] interface {
	// Done is closed once the result is available.
	Done() <-chan struct{}
	// Result returns the outcome; valid after Done is closed.
	Result() (T, error)
}
