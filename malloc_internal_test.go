package malloc

import "testing"

// newTestHeap builds a Heap (sentinels plus the first 64-byte extension)
// over a hostheap of the given capacity, for tests that poke
// block.go/heap.go directly without going through Allocator. Mirrors
// buddy_test.go's helper pattern of building the smallest fixture a given
// test needs.
func newTestHeap(t *testing.T, capacity int) (*Heap, PageProvider) {
	t.Helper()
	p, err := NewHostProvider(capacity)
	if err != nil {
		t.Fatalf("NewHostProvider: %v", err)
	}
	h := &Heap{}
	if _, err := h.init(p); err != nil {
		t.Fatalf("heap init: %v", err)
	}
	return h, p
}

// newTestAllocator builds a ready-to-use Allocator over a hostheap of the
// given capacity.
func newTestAllocator(t *testing.T, capacity int, opts ...Option) *Allocator {
	t.Helper()
	p, err := NewHostProvider(capacity)
	if err != nil {
		t.Fatalf("NewHostProvider: %v", err)
	}
	a, err := NewAllocator(p, opts...)
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	return a
}
