package malloc

import (
	"log"
)

// trace.go mirrors cznic/memory's debug switch: every public entry point is
// wrapped in "if trace { ... }" logging of its arguments and result. There
// a package-level const gated the logging (and the compiler dead-code-eliminated
// it when false); here it is a per-Allocator option (WithTrace) since a
// single process may want one allocator traced and another not, and no
// structured-logging library appears anywhere in the retrieval pack to
// replace log.Printf with.
func (a *Allocator) tracef(format string, args ...interface{}) {
	if !a.opts.trace {
		return
	}
	log.Printf("malloc: "+format, args...)
}

func (a *Allocator) traceAlloc(n, off int) {
	a.tracef("Alloc(%d) -> off=%#x", n, off)
}

func (a *Allocator) traceFree(off, size int) {
	a.tracef("Free(off=%#x, size=%d)", off, size)
}

func (a *Allocator) traceCalloc(count, n int) {
	a.tracef("Calloc(%d, %d)", count, n)
}

func (a *Allocator) traceRealloc(oldOff, n int) {
	a.tracef("Realloc(off=%#x, %d)", oldOff, n)
}
