package malloc

import (
	"fmt"
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// hostheap is the default PageProvider: a single fixed-capacity arena
// backed by a Go byte slice, grown by bumping a high-water mark the way a
// classic malloc lab backs its heap with one pre-reserved MAX_HEAP region
// instead of real sbrk/mmap calls. This is the reference implementation
// used by every test and benchmark in this module.
//
// The arena is allocated once, at construction, with dirtmake.Bytes instead
// of make([]byte, ...): the allocator writes its own header words before
// exposing any block, Alloc hands out uninitialized bytes, and Calloc does
// its own zero-fill, so paying for the runtime's zero-fill up front buys
// nothing (the same tradeoff bufiox and
// gridbuf make with mcache/dirtmake for their read/write buffers).
type hostheap struct {
	arena []byte
	start unsafe.Pointer
	used  int
}

// newHostHeap reserves a capacity-byte arena. capacity is the hard ceiling
// on how far the heap can ever grow; Extend fails with ErrOOM once it would
// be exceeded.
//
// make([]byte, n) is not documented to return 16-byte-aligned memory for
// arbitrary n, unlike the page-aligned mmap cznic/memory's mmap_unix.go
// relies on, so a little extra is reserved and the usable window is sliced
// out at the first 16-byte-aligned offset, the same defensive-alignment
// check cznic/memory's own mmap_unix.go makes (there against osPageMask,
// here against alignment-1) before trusting the result.
func newHostHeap(capacity int) (*hostheap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}
	raw := dirtmake.Bytes(capacity+alignment, capacity+alignment)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := roundUp(int(base), alignment)
	arena := raw[uintptr(aligned)-base:]
	start := unsafe.Pointer(&arena[0])
	if uintptr(start)&(alignment-1) != 0 {
		panic("malloc: hostheap arena is not 16-byte aligned")
	}
	return &hostheap{
		arena: arena[:capacity],
		start: start,
	}, nil
}

func (p *hostheap) Extend(deltaBytes int) (unsafe.Pointer, error) {
	if p.used+deltaBytes > len(p.arena) {
		return nil, fmt.Errorf("hostheap: %w (capacity %d, requested %d more on top of %d used)",
			ErrOOM, len(p.arena), deltaBytes, p.used)
	}
	ret := unsafe.Add(p.start, p.used)
	p.used += deltaBytes
	return ret, nil
}

// Low and High report the current heap extent, used only by the debug
// checker.
func (p *hostheap) Low() unsafe.Pointer { return p.start }
func (p *hostheap) High() unsafe.Pointer {
	if p.used == 0 {
		return p.start
	}
	return unsafe.Add(p.start, p.used-1)
}

// NewHostProvider builds the package's default PageProvider, to be passed to
// NewAllocator: a capacity-byte arena that never moves.
func NewHostProvider(capacity int) (PageProvider, error) { return newHostHeap(capacity) }
