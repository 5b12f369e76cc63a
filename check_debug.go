//go:build allocdebug

package malloc

import (
	"fmt"
	"unsafe"
)

// extentReporter is implemented by PageProviders (hostheap, mmapheap) that
// can report their current reservation bounds; Check uses it, when
// available, to cross-check the heap's own book-keeping against the
// provider's.
type extentReporter interface {
	Low() unsafe.Pointer
	High() unsafe.Pointer
}

// Check walks the whole heap and every free list, verifying sentinel
// shape, block-chain consistency, header/footer agreement and free-list
// membership. lineTag is included in any returned error so a caller can pin
// a failure to a call site the way cznic/memory's own debug-only
// consistency checks are wired up to a trace line number.
//
// Built only with -tags allocdebug: release builds trust their inputs and
// get check_release.go instead, a zero-cost no-op.
func (a *Allocator) Check(lineTag string) error {
	h := &a.heap

	if err := checkSentinels(h); err != nil {
		return fmt.Errorf("%s: %w", lineTag, err)
	}
	if err := checkProviderExtent(h); err != nil {
		return fmt.Errorf("%s: %w", lineTag, err)
	}
	if err := checkBlockChain(h); err != nil {
		return fmt.Errorf("%s: %w", lineTag, err)
	}
	if err := checkFreeLists(h, a.fl); err != nil {
		return fmt.Errorf("%s: %w", lineTag, err)
	}
	return nil
}

// checkSentinels verifies the prologue and epilogue are present, allocated,
// and size 0.
func checkSentinels(h *Heap) error {
	pw := h.word(prologueOff)
	if wordBlockSize(pw) != 0 || !wordAlloc(pw) {
		return fmt.Errorf("%w: prologue malformed (size=%d alloc=%v)", ErrCorrupt, wordBlockSize(pw), wordAlloc(pw))
	}
	ew := h.word(h.epilogueOff())
	if wordBlockSize(ew) != 0 || !wordAlloc(ew) {
		return fmt.Errorf("%w: epilogue malformed (size=%d alloc=%v)", ErrCorrupt, wordBlockSize(ew), wordAlloc(ew))
	}
	return nil
}

// checkProviderExtent cross-checks the heap's own brk book-keeping against
// the provider's reported extent, when the provider supports reporting one.
// hostheap and mmapheap both do; a minimal custom PageProvider need not.
func checkProviderExtent(h *Heap) error {
	er, ok := h.provider.(extentReporter)
	if !ok {
		return nil
	}
	if er.Low() != h.base {
		return fmt.Errorf("%w: provider low %p does not match heap base %p", ErrCorrupt, er.Low(), h.base)
	}
	wantHigh := h.ptr(h.brk - 1)
	if er.High() != wantHigh {
		return fmt.Errorf("%w: provider high %p does not match heap extent %p", ErrCorrupt, er.High(), wantHigh)
	}
	return nil
}

// checkBlockChain walks every block between the sentinels, verifying
// payload alignment, size bounds, the prevAlloc/prevMini flags each block
// carries about its neighbor, the no-two-adjacent-free-blocks invariant, and
// header/footer agreement as it goes.
func checkBlockChain(h *Heap) error {
	off := prologueOff + wordSize
	prevW := h.word(prologueOff)
	prevFree := false

	for off < h.epilogueOff() {
		w := h.word(off)
		size := wordBlockSize(w)

		if size < minBlockSize || size%alignment != 0 {
			return fmt.Errorf("%w: block at %#x has bad size %d", ErrCorrupt, off, size)
		}
		if h.payloadOff(off)%alignment != 0 {
			return fmt.Errorf("%w: payload of block at %#x is not %d-byte aligned", ErrCorrupt, off, alignment)
		}

		wantPrevAlloc := wordAlloc(prevW)
		wantPrevMini := wordBlockSize(prevW) == minBlockSize
		if wordPrevAlloc(w) != wantPrevAlloc {
			return fmt.Errorf("%w: block at %#x prev_alloc=%v, want %v", ErrCorrupt, off, wordPrevAlloc(w), wantPrevAlloc)
		}
		if wordPrevMini(w) != wantPrevMini {
			return fmt.Errorf("%w: block at %#x prev_mini=%v, want %v", ErrCorrupt, off, wordPrevMini(w), wantPrevMini)
		}

		alloc := wordAlloc(w)
		if !alloc {
			if prevFree {
				return fmt.Errorf("%w: two adjacent free blocks ending at %#x", ErrCorrupt, off)
			}
			if size > minBlockSize {
				fw := h.word(footerOff(off, size))
				if fw != w {
					return fmt.Errorf("%w: block at %#x header/footer mismatch (%#x vs %#x)", ErrCorrupt, off, w, fw)
				}
			}
		}
		prevFree = !alloc
		prevW = w
		off = h.nextInHeap(off)
	}

	if off != h.epilogueOff() {
		return fmt.Errorf("%w: block chain overran epilogue (ended at %#x, epilogue at %#x)", ErrCorrupt, off, h.epilogueOff())
	}
	return nil
}

// checkFreeLists verifies every listed block is actually free and in the
// class its size maps to, every list shape is well-formed, and (via a
// reachability count) every free block in the heap appears in exactly one
// list.
func checkFreeLists(h *Heap, fl *freeList) error {
	seen := map[int]bool{}

	for class := 0; class < numClasses; class++ {
		off := fl.heads[class]
		prevLink := nullOff

		for off != nullOff {
			w := h.word(off)
			if wordAlloc(w) {
				return fmt.Errorf("%w: allocated block at %#x found on free list class %d", ErrCorrupt, off, class)
			}
			if got := classOf(wordBlockSize(w)); got != class {
				return fmt.Errorf("%w: block at %#x of size %d is in class %d, want %d", ErrCorrupt, off, wordBlockSize(w), class, got)
			}
			if seen[off] {
				return fmt.Errorf("%w: block at %#x appears on a free list twice", ErrCorrupt, off)
			}
			seen[off] = true

			if !fl.isMini(class) {
				prev := h.readLink(h.payloadOff(off) + wordSize)
				if prev != prevLink {
					return fmt.Errorf("%w: block at %#x has prev=%#x, want %#x", ErrCorrupt, off, prev, prevLink)
				}
			}

			prevLink = off
			off = h.readLink(h.payloadOff(off))
		}
	}

	off = prologueOff + wordSize
	for off < h.epilogueOff() {
		w := h.word(off)
		if !wordAlloc(w) && !seen[off] {
			return fmt.Errorf("%w: free block at %#x is not linked into any free list", ErrCorrupt, off)
		}
		if wordAlloc(w) && seen[off] {
			return fmt.Errorf("%w: allocated block at %#x is linked into a free list", ErrCorrupt, off)
		}
		off = h.nextInHeap(off)
	}
	return nil
}
