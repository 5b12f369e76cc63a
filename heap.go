package malloc

import (
	"fmt"
	"unsafe"
)

// PageProvider is the external collaborator that grows the heap. Extend
// must hand back a stable address: the byte at offset k of the arena, once
// returned, keeps that same address for the provider's whole lifetime. Real
// implementations live in provider.go (hostheap, backed by a fixed-capacity
// Go slice) and provider_mmap_*.go (backed by an OS mmap reservation).
type PageProvider interface {
	// Extend grows the heap by deltaBytes and returns the address of the
	// first newly available byte. deltaBytes is always already rounded to
	// a multiple of 16 by the caller.
	Extend(deltaBytes int) (unsafe.Pointer, error)
}

// ErrOOM is returned by a PageProvider when it cannot grow further. Alloc
// reports it as a nil return, mirroring a real malloc's null-on-OOM
// contract; Calloc and Realloc return it as their error.
var ErrOOM = fmt.Errorf("malloc: out of memory")

// initialChunkSize is the size of the first real extension, made right
// after the two sentinel words are written.
const initialChunkSize = 64

// Heap is the boundary-tag heap: sentinels, the live block sequence between
// them, and the provider that grows it. It knows nothing about free lists;
// that bookkeeping lives in freeList and is threaded through by Allocator.
type Heap struct {
	provider PageProvider
	base     unsafe.Pointer // address of offset 0 (the prologue word)
	brk      int            // total committed bytes; the epilogue is at brk-wordSize
}

// prologueOff and the first real block's offset are fixed: the prologue is
// a single word at offset 0.
const prologueOff = 0

func (h *Heap) epilogueOff() int { return h.brk - wordSize }

// init writes the two sentinels and performs the first extension: a fresh
// heap is two zero-sized, allocated sentinel words followed by one 64-byte
// free block.
func (h *Heap) init(provider PageProvider) (int, error) {
	h.provider = provider
	h.base = nil
	h.brk = 0

	p, err := provider.Extend(2 * wordSize)
	if err != nil {
		return 0, fmt.Errorf("malloc: initial heap reservation failed: %w", ErrOOM)
	}
	h.base = p
	h.brk = 2 * wordSize
	// Prologue: size 0, allocated, prev fields irrelevant but conventionally true/false.
	h.setWord(prologueOff, packWord(0, true, true, false))
	// Epilogue: size 0, allocated; prev is the prologue, which is "allocated"
	// and not mini, so prevAlloc=true, prevMini=false.
	h.setWord(wordSize, packWord(0, true, true, false))

	return h.extend(initialChunkSize)
}

// extend rounds deltaBytes up to a multiple of 16, asks the provider for
// that many more bytes, and installs a free block over them and a fresh
// epilogue past the end. Returns the offset of the new free block. It does
// not coalesce the block or link it into a free list; callers do that.
func (h *Heap) extend(deltaBytes int) (int, error) {
	delta := roundUp(deltaBytes, alignment)
	if delta < minBlockSize {
		delta = minBlockSize
	}

	oldEpilogueOff := h.epilogueOff()
	oldEpilogue := h.word(oldEpilogueOff)

	got, err := h.provider.Extend(delta)
	if err != nil {
		return 0, fmt.Errorf("malloc: heap extend by %d bytes: %w", delta, ErrOOM)
	}
	if got != h.ptr(h.brk) {
		return 0, fmt.Errorf("malloc: page provider returned a non-contiguous address")
	}

	newBlockOff := oldEpilogueOff
	h.brk += delta

	prevAlloc := wordPrevAlloc(oldEpilogue)
	prevMini := wordPrevMini(oldEpilogue)
	h.writeFreeBlock(newBlockOff, delta, prevAlloc, prevMini)

	newEpilogueOff := newBlockOff + delta
	h.setWord(newEpilogueOff, packWord(0, true, false, delta == minBlockSize))

	return newBlockOff, nil
}

// writeFreeBlock writes a free block's header (and footer, for standard
// blocks) at off, inheriting prevAlloc/prevMini from whatever currently
// precedes it. It does not touch free-list membership or the trailing
// neighbor; callers (extend, the coalescer, the splitter) own that.
func (h *Heap) writeFreeBlock(off, size int, prevAlloc, prevMini bool) {
	w := packWord(size, false, prevAlloc, prevMini)
	h.setWord(off, w)
	if size > minBlockSize { // standard free block (size >= 32): carries a footer
		h.setWord(footerOff(off, size), w)
	}
}

// writeAllocBlock writes an allocated block's header at off. Allocated
// blocks have no footer; the word that would be the footer is payload.
func (h *Heap) writeAllocBlock(off, size int, prevAlloc, prevMini bool) {
	h.setWord(off, packWord(size, true, prevAlloc, prevMini))
}

// publishPrevFlags updates the block at off to reflect that its physical
// predecessor now has the given allocation/mini state, preserving off's own
// size and alloc bit. This is the single choke point every coalesce and
// every split calls on the block right after the span they touched, so the
// trailing neighbor's flags are never left stale.
func (h *Heap) publishPrevFlags(off int, prevAlloc, prevMini bool) {
	h.setWord(off, withPrevFlags(h.word(off), prevAlloc, prevMini))
}

// roundUp rounds n up to the next multiple of m, m a power of two.
func roundUp(n, m int) int { return (n + m - 1) &^ (m - 1) }
