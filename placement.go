package malloc

// maxSearch is the default best-fit look-ahead bound: after the first
// qualifying candidate in a class, at most this many more are examined
// before the search settles for the best seen so far, trading a true
// best-fit scan for a bounded one. Overridable per-Allocator via
// WithMaxSearch.
const maxSearch = 6

// adjustedSize turns a user request of n bytes into the internal block size
// asize: one word for the header, rounded up to 16-byte alignment, floored
// at the minimum block size.
func adjustedSize(n int) int {
	asize := roundUp(n+wordSize, alignment)
	if asize < minBlockSize {
		asize = minBlockSize
	}
	return asize
}

// findFit performs a bounded best-fit search: starting at asize's own class
// and moving to larger classes, it returns the smallest block of at least
// asize seen within the first 1+maxSearch qualifying candidates of the
// first class that has any. Returns nullOff if no class has a fit.
func findFit(h *Heap, fl *freeList, asize, bound int) int {
	for class := classOf(asize); class < numClasses; class++ {
		best := nullOff
		bestSize := 0
		seen := 0

		off := fl.heads[class]
		for off != nullOff {
			size := h.blockSize(off)
			if size >= asize {
				if best == nullOff || size < bestSize {
					best, bestSize = off, size
				}
				seen++
				if seen > bound {
					break
				}
			}
			off = h.readLink(h.payloadOff(off))
		}

		if best != nullOff {
			return best
		}
	}
	return nullOff
}

// place unlinks the fit block at off from its free list and either splits
// it into an allocated prefix of asize bytes plus a free remainder, or
// allocates it whole when the remainder would be smaller than a minimum
// block. Either way it publishes the new boundary onto whatever physically
// follows. Returns off, now an allocated block.
func place(h *Heap, fl *freeList, off, asize int) int {
	fl.remove(classOf(h.blockSize(off)), off)

	size := h.blockSize(off)
	prevAlloc, prevMini := prevFlagsOf(h, off)

	remainder := size - asize
	if remainder >= minBlockSize {
		h.writeAllocBlock(off, asize, prevAlloc, prevMini)

		remOff := off + asize
		h.writeFreeBlock(remOff, remainder, true, asize == minBlockSize)
		fl.insert(remOff)

		next := h.nextInHeap(remOff)
		h.publishPrevFlags(next, false, remainder == minBlockSize)
		return off
	}

	h.writeAllocBlock(off, size, prevAlloc, prevMini)
	next := h.nextInHeap(off)
	h.publishPrevFlags(next, true, size == minBlockSize)
	return off
}
