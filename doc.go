// Package malloc implements a general-purpose dynamic memory allocator over
// a contiguous, monotonically growable arena supplied by a PageProvider.
//
// It serves arbitrary allocation sizes with 16-byte payload alignment using
// segregated free lists, boundary-tag coalescing, block splitting and a
// bounded best-fit search. The zero value of Allocator is not usable; build
// one with NewAllocator.
//
// The arena is addressed by byte offset rather than by Go pointer: every
// block, free or allocated, is identified by its header's offset from the
// arena base. Free-list links and boundary tags are stored as plain 8-byte
// words inside the arena itself, the same way a C allocator stores them as
// bytes in process memory; this package never keeps a Go pointer into the
// arena alive across a call, only the (stable) base pointer and integer
// offsets, so arena growth never invalidates outstanding allocations.
package malloc
