package malloc

import "github.com/cznic/mathutil"

// numClasses is the number of segregated free-list classes.
const numClasses = 15

// classBounds holds each class's inclusive lower bound in bytes. Class i
// spans [classBounds[i], classBounds[i+1}) except the last, which is
// unbounded above.
var classBounds = [numClasses]int{
	16, 32, 48, 64, 80, 112, 160, 208, 272, 480, 800, 1728, 3232, 5536, 18736,
}

// classOf returns the segregated-list class whose interval contains size.
// mathutil.BitLen gives a coarse starting guess (the way cznic/memory turns
// a size into a power-of-two size class) which is then walked to the exact
// boundary, since these class widths are not themselves powers of two.
func classOf(size int) int {
	if size >= classBounds[numClasses-1] {
		return numClasses - 1
	}

	guess := mathutil.BitLen(size) - 4
	if guess < 0 {
		guess = 0
	}
	if guess > numClasses-1 {
		guess = numClasses - 1
	}
	for guess > 0 && size < classBounds[guess] {
		guess--
	}
	for guess < numClasses-1 && size >= classBounds[guess+1] {
		guess++
	}
	return guess
}

// freeList is the segregated free-list index. Class 0 is a singly-linked
// chain of mini (16-byte) blocks; classes 1..14 are doubly-linked chains of
// standard blocks.
type freeList struct {
	h     *Heap
	heads [numClasses]int
}

func newFreeList(h *Heap) *freeList {
	fl := &freeList{h: h}
	for i := range fl.heads {
		fl.heads[i] = nullOff
	}
	return fl
}

func (fl *freeList) isMini(class int) bool { return class == 0 }

// insertHead links off into the head of its class's list. O(1) for every
// class.
func (fl *freeList) insertHead(class, off int) {
	h := fl.h
	head := fl.heads[class]
	if fl.isMini(class) {
		h.writeLink(h.payloadOff(off), head)
		fl.heads[class] = off
		return
	}

	h.writeLink(h.payloadOff(off), head)         // next
	h.writeLink(h.payloadOff(off)+wordSize, nullOff) // prev
	if head != nullOff {
		h.writeLink(h.payloadOff(head)+wordSize, off)
	}
	fl.heads[class] = off
}

// remove unlinks off from class's list. O(1) for standard classes via the
// doubly-linked unlink; O(n) for class 0, which has no prev pointer and
// must be found by walking from the head. Acceptable because mini-block
// lists stay short in practice; a back-pointer side-table could make this
// O(1) too, at the cost of extra bookkeeping on every mini alloc/free.
func (fl *freeList) remove(class, off int) {
	h := fl.h
	if fl.isMini(class) {
		if fl.heads[class] == off {
			fl.removeHead(class)
			return
		}
		prev := fl.heads[class]
		for prev != nullOff {
			next := h.readLink(h.payloadOff(prev))
			if next == off {
				h.writeLink(h.payloadOff(prev), h.readLink(h.payloadOff(off)))
				return
			}
			prev = next
		}
		return
	}

	next := h.readLink(h.payloadOff(off))
	prev := h.readLink(h.payloadOff(off) + wordSize)
	switch {
	case prev == nullOff && next == nullOff:
		fl.heads[class] = nullOff
	case prev == nullOff:
		fl.heads[class] = next
		h.writeLink(h.payloadOff(next)+wordSize, nullOff)
	case next == nullOff:
		h.writeLink(h.payloadOff(prev), nullOff)
	default:
		h.writeLink(h.payloadOff(prev), next)
		h.writeLink(h.payloadOff(next)+wordSize, prev)
	}
}

// removeHead unlinks and returns the head of class's list, or nullOff if the
// list is empty. O(1) specialization; remove uses it when the mini block to
// unlink is the head of its list.
func (fl *freeList) removeHead(class int) int {
	h := fl.h
	off := fl.heads[class]
	if off == nullOff {
		return nullOff
	}
	next := h.readLink(h.payloadOff(off))
	fl.heads[class] = next
	if !fl.isMini(class) && next != nullOff {
		h.writeLink(h.payloadOff(next)+wordSize, nullOff)
	}
	return off
}

// insert places the free block at off into the class its header's size maps
// to. Convenience wrapper used by the heap extender, coalescer and splitter.
func (fl *freeList) insert(off int) {
	fl.insertHead(classOf(fl.h.blockSize(off)), off)
}
