package malloc

import "errors"

// Sentinel errors returned by the constructor, Calloc, Realloc and the
// debug checker, the way buddy.go's constructors report bad arguments.
// Alloc keeps a nil-return, no-error-value contract, matching a real malloc.
var (
	// ErrInvalidArgument is returned by NewAllocator/options and the
	// providers for out-of-range configuration, and by Calloc for a
	// negative size.
	ErrInvalidArgument = errors.New("malloc: invalid argument")

	// ErrCorrupt is returned by Check when a heap invariant does not hold.
	ErrCorrupt = errors.New("malloc: heap invariant violated")

	// ErrOverflow is returned by Calloc when count*size would overflow.
	ErrOverflow = errors.New("malloc: size overflow")
)
