package malloc

import (
	"fmt"
	"math"
	"unsafe"
)

// Allocator is the public malloc/free/realloc/calloc surface. Its zero
// value is not usable; build one with NewAllocator.
type Allocator struct {
	heap Heap
	fl   *freeList
	opts options

	allocs    int // live allocation count
	liveBytes int // sum of block sizes currently allocated, header included
}

// NewAllocator builds an Allocator backed by provider, writes the sentinels
// and performs the first extension, applying opts along the way.
func NewAllocator(provider PageProvider, opts ...Option) (*Allocator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	a := &Allocator{opts: o}
	a.fl = newFreeList(&a.heap)

	off, err := a.heap.init(provider)
	if err != nil {
		return nil, err
	}
	coalesce(&a.heap, a.fl, off)
	return a, nil
}

// Alloc returns a 16-byte-aligned slice of n freshly allocated, uninitialized
// bytes, or nil if n <= 0 or the heap could not grow far enough.
func (a *Allocator) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}

	asize := adjustedSize(n)
	off := findFit(&a.heap, a.fl, asize, a.opts.maxSearch)
	if off == nullOff {
		grown, err := a.heap.extend(max(asize, a.opts.initialChunk))
		if err != nil {
			return nil
		}
		off = coalesce(&a.heap, a.fl, grown)
	}

	allocOff := place(&a.heap, a.fl, off, asize)
	a.allocs++
	a.liveBytes += a.heap.blockSize(allocOff)
	a.traceAlloc(n, allocOff)
	return a.heap.sliceAt(allocOff, n)
}

// Calloc is like Alloc(count*n) except the memory is zeroed and a
// multiplication overflow is reported instead of silently wrapping.
func (a *Allocator) Calloc(count, n int) ([]byte, error) {
	a.traceCalloc(count, n)
	if count == 0 || n == 0 {
		return nil, nil
	}
	if count < 0 || n < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrInvalidArgument)
	}
	if count > math.MaxInt/n {
		return nil, ErrOverflow
	}

	b := a.Alloc(count * n)
	if b == nil {
		return nil, ErrOOM
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free releases a slice previously returned by Alloc, Calloc or Realloc. A
// nil or zero-capacity slice is a no-op; freeing anything else, including a
// double free, is undefined behavior the package does not detect outside
// of Check.
func (a *Allocator) Free(b []byte) {
	off, ok := a.offsetOf(b)
	if !ok {
		return
	}

	size := a.heap.blockSize(off)
	prevAlloc, prevMini := prevFlagsOf(&a.heap, off)
	a.heap.writeFreeBlock(off, size, prevAlloc, prevMini)
	a.allocs--
	a.liveBytes -= size
	a.traceFree(off, size)
	coalesce(&a.heap, a.fl, off)
}

// Realloc changes b's size to n bytes, copying min(n, len(b)) bytes of the
// old contents and freeing b. There is no in-place growth: n == 0 behaves
// like Free; a nil/zero-capacity b behaves like Alloc(n); on OOM the
// original block is left intact and (nil, ErrOOM) is returned.
func (a *Allocator) Realloc(b []byte, n int) ([]byte, error) {
	off, ok := a.offsetOf(b)
	a.traceRealloc(off, n)

	if n == 0 {
		a.Free(b)
		return nil, nil
	}
	if !ok {
		r := a.Alloc(n)
		if r == nil {
			return nil, ErrOOM
		}
		return r, nil
	}

	r := a.Alloc(n)
	if r == nil {
		return nil, ErrOOM
	}
	copy(r, b[:min(len(b), n)])
	a.Free(b)
	return r, nil
}

// offsetOf recovers the header offset of the block backing b, the inverse
// of sliceAt, by subtracting the arena base from b's data pointer. Reports
// ok=false for a nil or zero-capacity slice.
func (a *Allocator) offsetOf(b []byte) (off int, ok bool) {
	if cap(b) == 0 {
		return 0, false
	}
	full := b[:cap(b)]
	p := unsafe.Pointer(unsafe.SliceData(full))
	return a.heap.blockFromPayloadOff(int(uintptr(p) - uintptr(a.heap.base))), true
}

// Stats summarizes heap occupancy, primarily for tests and benchmarks; a
// natural addition any production allocator exposes, alongside the core
// alloc/free/realloc/calloc surface (see SPEC_FULL.md).
type Stats struct {
	Allocs     int // live allocation count
	LiveBytes  int // bytes currently allocated, headers included
	HeapBytes  int // total bytes committed from the provider
	FreeBlocks int // number of blocks currently on some free list
	FreeBytes  int // bytes currently free, headers/footers included
}

// Stats reports current heap occupancy.
func (a *Allocator) Stats() Stats {
	s := Stats{
		Allocs:    a.allocs,
		LiveBytes: a.liveBytes,
		HeapBytes: a.heap.brk,
	}
	for class := 0; class < numClasses; class++ {
		off := a.fl.heads[class]
		for off != nullOff {
			s.FreeBlocks++
			s.FreeBytes += a.heap.blockSize(off)
			off = a.heap.readLink(a.heap.payloadOff(off))
		}
	}
	return s
}
