package malloc

// coalesce merges the newly-free block at off with whichever physical
// neighbors are also free, updates their free-list membership, writes the
// combined boundary tag, and publishes the merge onto the block that now
// follows it. off must not yet be linked into any free list. Returns the
// offset of the resulting free block.
func coalesce(h *Heap, fl *freeList, off int) int {
	prevAllocated := wordPrevAlloc(h.word(off))
	nextOff := h.nextInHeap(off)
	nextAllocated := wordAlloc(h.word(nextOff))

	switch {
	case prevAllocated && nextAllocated: // case 1
		fl.insert(off)
		publishMergeBoundary(h, off, h.blockSize(off))
		return off

	case prevAllocated && !nextAllocated: // case 2
		fl.remove(classOf(h.blockSize(nextOff)), nextOff)
		size := h.blockSize(off) + h.blockSize(nextOff)
		prevAlloc, prevMini := prevFlagsOf(h, off)
		h.writeFreeBlock(off, size, prevAlloc, prevMini)
		fl.insert(off)
		publishMergeBoundary(h, off, size)
		return off

	case !prevAllocated && nextAllocated: // case 3
		prevOff := h.prevInHeap(off)
		fl.remove(classOf(h.blockSize(prevOff)), prevOff)
		size := h.blockSize(prevOff) + h.blockSize(off)
		prevAlloc, prevMini := prevFlagsOf(h, prevOff)
		h.writeFreeBlock(prevOff, size, prevAlloc, prevMini)
		fl.insert(prevOff)
		publishMergeBoundary(h, prevOff, size)
		return prevOff

	default: // case 4: both free
		prevOff := h.prevInHeap(off)
		fl.remove(classOf(h.blockSize(prevOff)), prevOff)
		fl.remove(classOf(h.blockSize(nextOff)), nextOff)
		size := h.blockSize(prevOff) + h.blockSize(off) + h.blockSize(nextOff)
		prevAlloc, prevMini := prevFlagsOf(h, prevOff)
		h.writeFreeBlock(prevOff, size, prevAlloc, prevMini)
		fl.insert(prevOff)
		publishMergeBoundary(h, prevOff, size)
		return prevOff
	}
}

// prevFlagsOf reads the prevAlloc/prevMini flags off's own header carries,
// i.e. the state of whatever precedes off. The merged block's header must
// preserve these from the leftmost participant in the merge.
func prevFlagsOf(h *Heap, off int) (prevAlloc, prevMini bool) {
	w := h.word(off)
	return wordPrevAlloc(w), wordPrevMini(w)
}

// publishMergeBoundary tells the block physically following a span of size
// `size` starting at `off` that its predecessor is now free, with the given
// size. Every coalesce case calls this, or the trailing neighbor's
// boundary-tag flags would go stale; place publishes its own boundary
// through publishPrevFlags directly.
func publishMergeBoundary(h *Heap, off, size int) {
	next := h.nextInHeap(off)
	h.publishPrevFlags(next, false, size == minBlockSize)
}
