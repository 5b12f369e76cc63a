package malloc

import "unsafe"

// wordSize is the width of a header/footer/free-list-link word: one packed
// 64-bit boundary tag per word.
const wordSize = 8

// minBlockSize is the size of a mini free block (header + next link, no
// footer, no prev link) and the smallest size any block may have.
const minBlockSize = 16

// alignment is the payload alignment guaranteed to callers.
const alignment = 16

// nullOff marks the absence of a free-list link, analogous to a nil *node.
const nullOff = -1

// ptr returns the live address of offset off within the arena.
func (h *Heap) ptr(off int) unsafe.Pointer { return unsafe.Add(h.base, off) }

func (h *Heap) word(off int) word    { return *(*word)(h.ptr(off)) }
func (h *Heap) setWord(off int, w word) { *(*word)(h.ptr(off)) = w }

// readLink/writeLink access a free-list next/prev field: a signed 64-bit
// arena offset, or nullOff. Stored as plain bytes, never as a Go pointer, so
// arena growth (which may reallocate nothing, since the arena is capped and
// fixed at construction, but which must never be assumed movable by this
// package) never invalidates a link.
func (h *Heap) readLink(off int) int    { return int(*(*int64)(h.ptr(off))) }
func (h *Heap) writeLink(off int, v int) { *(*int64)(h.ptr(off)) = int64(v) }

// blockSize reports the size, in bytes, of the block whose header is at off.
func (h *Heap) blockSize(off int) int { return wordBlockSize(h.word(off)) }

// payloadOff returns the offset of the payload (or free-list link area) of
// the block whose header is at off.
func (h *Heap) payloadOff(off int) int { return off + wordSize }

// blockFromPayloadOff is the inverse of payloadOff.
func (h *Heap) blockFromPayloadOff(p int) int { return p - wordSize }

// footerOff returns the offset of the footer word of a free standard block
// of the given size. Only meaningful for free blocks with size >= 32; for
// allocated or mini blocks the footer word is reused for payload/link bytes
// and any footer read there is meaningless.
func footerOff(off, size int) int { return off + size - wordSize }

// nextInHeap returns the offset of the block physically following off. off
// must not be the epilogue (size 0).
func (h *Heap) nextInHeap(off int) int { return off + h.blockSize(off) }

// prevInHeap returns the offset of the block physically preceding off,
// using the prevMini flag to skip the footer lookup when the predecessor
// has no footer.
func (h *Heap) prevInHeap(off int) int {
	w := h.word(off)
	if wordPrevMini(w) {
		return off - minBlockSize
	}
	fw := h.word(off - wordSize)
	return off - wordBlockSize(fw)
}

// sliceAt returns the caller-facing slice for the allocated block at off:
// length n (the requested size), capacity equal to the block's full usable
// payload, the same len/cap split cznic/memory and buddy.go return from
// Malloc/Alloc. The slice aliases live arena memory for as long as off
// stays allocated.
func (h *Heap) sliceAt(off, n int) []byte {
	usable := h.usablePayload(off)
	full := unsafe.Slice((*byte)(h.ptr(h.payloadOff(off))), usable)
	return full[:n]
}

// usablePayload returns the number of payload bytes available in the block
// at off without resizing it (its size minus the header word).
func (h *Heap) usablePayload(off int) int { return h.blockSize(off) - wordSize }
