// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrLoopClosed indicates the loop has been closed
	ErrLoopClosed = errors.New("event loop is closed")

	// ErrLoopRunning indicates Run was called while the loop is already running
	ErrLoopRunning = errors.New("event loop is already running")

	// ErrMailboxClosed indicates Put on a closed mailbox
	ErrMailboxClosed = errors.New("mailbox is closed")
)
