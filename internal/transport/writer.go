// File: internal/transport/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffered write side: Send never blocks on the peer, chunks are written in
// order by a dedicated goroutine.

package transport

import (
	"io"
	"time"

	"github.com/momentics/hioload-rpc/internal/concurrency"
)

// Writer drains queued chunks into w. After the first write failure the
// remaining chunks are discarded and onErr has been called exactly once.
type Writer struct {
	w       io.Writer
	box     *concurrency.Mailbox[[]byte]
	onWrite func(n int)
	onErr   func(err error)
	done    chan struct{}
}

// NewWriter starts the writer goroutine. onWrite and onErr may be nil.
func NewWriter(w io.Writer, onWrite func(n int), onErr func(err error)) *Writer {
	wr := &Writer{
		w:       w,
		box:     concurrency.NewMailbox[[]byte](),
		onWrite: onWrite,
		onErr:   onErr,
		done:    make(chan struct{}),
	}
	go wr.loop()
	return wr
}

// Enqueue queues p for writing. The caller must not modify p afterwards.
func (wr *Writer) Enqueue(p []byte) error {
	return wr.box.Put(p)
}

// Buffered returns the number of chunks not yet written.
func (wr *Writer) Buffered() int {
	return wr.box.Len()
}

// Close stops accepting chunks and waits up to timeout for the queue to
// flush. It reports whether everything queued was handed to the writer.
func (wr *Writer) Close(timeout time.Duration) bool {
	wr.box.Close()
	if timeout <= 0 {
		select {
		case <-wr.done:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-wr.done:
		return true
	case <-t.C:
		return false
	}
}

func (wr *Writer) loop() {
	defer close(wr.done)
	failed := false
	for {
		if p, ok := wr.box.TryTake(); ok {
			if failed {
				continue
			}
			n, err := wr.w.Write(p)
			if n > 0 && wr.onWrite != nil {
				wr.onWrite(n)
			}
			if err != nil {
				failed = true
				if wr.onErr != nil {
					wr.onErr(err)
				}
			}
			continue
		}
		select {
		case <-wr.box.Wake():
		case <-wr.box.Closed():
			if wr.box.Len() == 0 {
				return
			}
		}
	}
}
