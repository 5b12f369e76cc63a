package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapInitWritesSentinels(t *testing.T) {
	h, _ := newTestHeap(t, 256)

	pw := h.word(prologueOff)
	require.Equal(t, 0, wordBlockSize(pw))
	require.True(t, wordAlloc(pw))

	ew := h.word(h.epilogueOff())
	require.Equal(t, 0, wordBlockSize(ew))
	require.True(t, wordAlloc(ew))

	require.Equal(t, 2*wordSize+initialChunkSize, h.brk)
}

func TestHeapInitFirstBlockIsFree(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	off := prologueOff + wordSize
	require.False(t, wordAlloc(h.word(off)))
	require.Equal(t, initialChunkSize, h.blockSize(off))
}

func TestHeapExtendGrowsBrkAndLinksEpilogue(t *testing.T) {
	h, _ := newTestHeap(t, 1024)
	oldBrk := h.brk

	off, err := h.extend(64)
	require.NoError(t, err)
	require.Equal(t, oldBrk-wordSize, off)
	require.Equal(t, oldBrk+64, h.brk)

	ew := h.word(h.epilogueOff())
	require.Equal(t, 0, wordBlockSize(ew))
	require.True(t, wordAlloc(ew))
}

func TestHeapExtendRoundsUpAndFloors(t *testing.T) {
	h, _ := newTestHeap(t, 1024)
	off, err := h.extend(1)
	require.NoError(t, err)
	require.Equal(t, minBlockSize, h.blockSize(off))
}

func TestHeapExtendOOM(t *testing.T) {
	h, _ := newTestHeap(t, 80) // exactly the sentinels plus the first 64-byte extension
	_, err := h.extend(4096)
	require.Error(t, err)
}

func TestWriteFreeBlockFooterOnlyForStandardBlocks(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	off := prologueOff + wordSize

	h.writeFreeBlock(off, minBlockSize, true, false)
	// No footer written for a mini block; the would-be footer word is left
	// alone, so writing garbage there and re-reading the header must still
	// report the mini block correctly.
	h.setWord(footerOff(off, minBlockSize), packWord(0xDEAD&^0xf, false, false, false))
	require.Equal(t, minBlockSize, h.blockSize(off))

	h.writeFreeBlock(off, 48, true, false)
	require.Equal(t, h.word(off), h.word(footerOff(off, 48)))
}

func TestPublishPrevFlags(t *testing.T) {
	h, _ := newTestHeap(t, 256)
	off := prologueOff + wordSize
	h.writeAllocBlock(off, 32, true, false)

	h.publishPrevFlags(off, false, true)
	w := h.word(off)
	require.False(t, wordPrevAlloc(w))
	require.True(t, wordPrevMini(w))
	require.True(t, wordAlloc(w)) // alloc bit and size untouched
	require.Equal(t, 32, wordBlockSize(w))
}

func TestRoundUp(t *testing.T) {
	cases := []struct{ n, m, want int }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{33, 16, 48},
	}
	for _, c := range cases {
		require.Equal(t, c.want, roundUp(c.n, c.m))
	}
}
