//go:build windows

package malloc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapheap is the Windows counterpart of the unix mmap provider: one
// CreateFileMapping/MapViewOfFile pair instead of a single mmap(2) call,
// mirroring cznic/memory's mmap_windows.go two-step reservation.
type mmapheap struct {
	handle windows.Handle
	addr   uintptr
	size   int
	start  unsafe.Pointer
	used   int
}

// NewMmapProvider reserves capacity bytes of committed, zero-filled memory
// via a Windows file mapping backed by the system paging file.
func NewMmapProvider(capacity int) (PageProvider, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}

	maxSizeHigh := uint32(uint64(capacity) >> 32)
	maxSizeLow := uint32(uint64(capacity) & 0xFFFFFFFF)
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if err != nil {
		return nil, fmt.Errorf("malloc: CreateFileMapping failed: %w", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(capacity))
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("malloc: MapViewOfFile failed: %w", err)
	}

	start := unsafe.Pointer(addr)
	if uintptr(start)&(alignment-1) != 0 {
		panic("malloc: MapViewOfFile returned a non-16-byte-aligned address")
	}

	return &mmapheap{handle: h, addr: addr, size: capacity, start: start}, nil
}

func (p *mmapheap) Extend(deltaBytes int) (unsafe.Pointer, error) {
	if p.used+deltaBytes > p.size {
		return nil, fmt.Errorf("mmapheap: %w (capacity %d, requested %d more on top of %d used)",
			ErrOOM, p.size, deltaBytes, p.used)
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

// Close releases the mapping back to the OS.
func (p *mmapheap) Close() error {
	if err := windows.UnmapViewOfFile(p.addr); err != nil {
		return err
	}
	return windows.CloseHandle(p.handle)
}
