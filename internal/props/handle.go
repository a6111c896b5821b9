package props

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// ErrInvalidName is returned by Create when the collector name contains an
// embedded NUL byte. The name is stored NUL-terminated for the handle's
// lifetime, so an embedded NUL would silently truncate it.
var ErrInvalidName = errors.New("props: collector name contains a NUL byte")

// handle pairs one collector instance with its immutable identifying name.
// It is the only thing referenced across the dispatch boundary: the engine
// holds its address as an unsafe.Pointer and never inspects the layout.
//
// The name buffer is NUL-terminated and never reallocated, so the pointer
// returned by the name trampoline stays valid for the handle's whole
// lifetime.
type handle[C Collector] struct {
	name []byte
	rep  C
}

// liveHandles counts handles created but not yet destroyed. Tests use it to
// verify the one-allocation/one-destruction discipline of the build
// lifecycle.
var liveHandles atomic.Int64

// LiveHandles returns the number of handles currently alive.
func LiveHandles() int64 {
	return liveHandles.Load()
}

func newHandle[C Collector](name string, collector C) (*handle[C], error) {
	buf := make([]byte, 0, len(name)+1)
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return nil, ErrInvalidName
		}
		buf = append(buf, name[i])
	}
	buf = append(buf, 0)

	liveHandles.Add(1)
	return &handle[C]{name: buf, rep: collector}, nil
}

// release drops the handle's contents. Called only from the destroy
// trampoline; the handle must not be used afterwards.
func (h *handle[C]) release() {
	var zero C
	h.rep = zero
	h.name = nil
	liveHandles.Add(-1)
}

// goString reads a NUL-terminated byte string starting at p into a Go
// string. p must point into a live handle's name buffer.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
