package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassOfBoundaries(t *testing.T) {
	for class, lower := range classBounds {
		require.Equal(t, class, classOf(lower), "lower bound of class %d", class)
		if class > 0 {
			require.Equal(t, class-1, classOf(lower-1), "one below lower bound of class %d", class)
		}
	}
	require.Equal(t, numClasses-1, classOf(classBounds[numClasses-1]*4))
}

func TestMiniClassIsSinglyLinked(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	fl := newFreeList(h)

	base := prologueOff + wordSize
	h.writeFreeBlock(base, minBlockSize, true, false)
	h.writeFreeBlock(base+minBlockSize, minBlockSize, false, true)

	fl.insertHead(0, base)
	fl.insertHead(0, base+minBlockSize)

	require.Equal(t, base+minBlockSize, fl.heads[0])
	require.Equal(t, base, h.readLink(h.payloadOff(base+minBlockSize)))
	require.Equal(t, nullOff, h.readLink(h.payloadOff(base)))
}

func TestStandardClassDoublyLinkedInsertAndRemove(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	fl := newFreeList(h)

	a := prologueOff + wordSize
	b := a + 32
	c := b + 32
	h.writeFreeBlock(a, 32, true, false)
	h.writeFreeBlock(b, 32, false, false)
	h.writeFreeBlock(c, 32, false, false)

	class := classOf(32)
	fl.insertHead(class, a)
	fl.insertHead(class, b)
	fl.insertHead(class, c)
	require.Equal(t, c, fl.heads[class])

	// c -> b -> a -> null, prev pointers mirrored
	require.Equal(t, b, h.readLink(h.payloadOff(c)))
	require.Equal(t, nullOff, h.readLink(h.payloadOff(c)+wordSize))
	require.Equal(t, a, h.readLink(h.payloadOff(b)))
	require.Equal(t, c, h.readLink(h.payloadOff(b)+wordSize))
	require.Equal(t, nullOff, h.readLink(h.payloadOff(a)))
	require.Equal(t, b, h.readLink(h.payloadOff(a)+wordSize))

	fl.remove(class, b) // remove from the middle
	require.Equal(t, a, h.readLink(h.payloadOff(c)))
	require.Equal(t, c, h.readLink(h.payloadOff(a)+wordSize))

	fl.remove(class, c) // remove the head
	require.Equal(t, a, fl.heads[class])
	require.Equal(t, nullOff, h.readLink(h.payloadOff(a)+wordSize))

	fl.remove(class, a) // remove the last element
	require.Equal(t, nullOff, fl.heads[class])
}

func TestRemoveHead(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	fl := newFreeList(h)

	a := prologueOff + wordSize
	b := a + 32
	h.writeFreeBlock(a, 32, true, false)
	h.writeFreeBlock(b, 32, false, false)

	class := classOf(32)
	fl.insertHead(class, a)
	fl.insertHead(class, b)

	got := fl.removeHead(class)
	require.Equal(t, b, got)
	require.Equal(t, a, fl.heads[class])

	got = fl.removeHead(class)
	require.Equal(t, a, got)
	require.Equal(t, nullOff, fl.heads[class])

	require.Equal(t, nullOff, fl.removeHead(class))
}

func TestInsertPicksClassFromSize(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	fl := newFreeList(h)

	off := prologueOff + wordSize
	h.writeFreeBlock(off, 80, true, false)
	fl.insert(off)

	require.Equal(t, off, fl.heads[classOf(80)])
}
