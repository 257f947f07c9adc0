// File: internal/transport/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Read side of every transport: a goroutine turning Read calls into chunks.

package transport

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// DefaultReadSize is the scratch buffer size used when none is configured.
const DefaultReadSize = 64 * 1024

// ReadPump reads r until it fails and hands every non-empty read to emit as
// a freshly allocated chunk. It returns the terminal read error (io.EOF on
// a clean end), or nil when emit asks it to stop by returning false.
func ReadPump(r io.Reader, size int, emit func(chunk []byte) bool) error {
	if size <= 0 {
		size = DefaultReadSize
	}
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if cap(bb.B) < size {
		bb.B = make([]byte, size)
	}
	scratch := bb.B[:size]

	for {
		n, err := r.Read(scratch)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, scratch[:n])
			if !emit(chunk) {
				return nil
			}
		}
		if err != nil {
			return err
		}
	}
}
