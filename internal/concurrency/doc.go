// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-goroutine event loop primitives for hioload-rpc. One EventLoop owns
// all callback execution for a driver; other goroutines only ever hand work
// to it through CallSoon. Mailbox is the unbounded queue plus wake
// notification underneath, and Pending is the explicit result type of an
// operation the loop waits on.
package concurrency
