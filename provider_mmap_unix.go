//go:build darwin || dragonfly || freebsd || linux || openbsd || netbsd || solaris

package malloc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapheap is an alternative PageProvider that reserves its whole capacity
// from the OS up front via a single anonymous mmap, the same one-reservation
// strategy cznic/memory's mmap_unix.go uses for its page pool, rather than
// hostheap's plain Go slice. Extend only ever bumps the used high-water
// mark within that reservation; nothing is mapped or unmapped afterwards.
type mmapheap struct {
	mem   []byte
	start unsafe.Pointer
	used  int
}

// NewMmapProvider reserves capacity bytes of anonymous, zero-filled memory
// via mmap(2) and returns a PageProvider over it. Unlike hostheap, the
// returned pages are always OS-page-aligned (a stronger guarantee than the
// 16-byte alignment this package requires), so no extra rounding is needed.
func NewMmapProvider(capacity int) (PageProvider, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}

	mem, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("malloc: mmap reservation of %d bytes failed: %w", capacity, err)
	}

	start := unsafe.Pointer(&mem[0])
	if uintptr(start)&(alignment-1) != 0 {
		panic("malloc: mmap returned a non-16-byte-aligned address")
	}

	return &mmapheap{mem: mem, start: start}, nil
}

func (p *mmapheap) Extend(deltaBytes int) (unsafe.Pointer, error) {
	if p.used+deltaBytes > len(p.mem) {
		return nil, fmt.Errorf("mmapheap: %w (capacity %d, requested %d more on top of %d used)",
			ErrOOM, len(p.mem), deltaBytes, p.used)
	}
	ret := unsafe.Add(p.start, p.used)
	p.used += deltaBytes
	return ret, nil
}

func (p *mmapheap) Low() unsafe.Pointer { return p.start }
func (p *mmapheap) High() unsafe.Pointer {
	if p.used == 0 {
		return p.start
	}
	return unsafe.Add(p.start, p.used-1)
}

// Close releases the reservation back to the OS. Not part of PageProvider;
// callers that built an Allocator over a *mmapheap and know it own its
// provider may type-assert to call it during shutdown.
func (p *mmapheap) Close() error {
	return unix.Munmap(p.mem)
}
