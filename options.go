package malloc

import "fmt"

// options holds construction-time tunables. There is no persisted state:
// every knob is set once, at construction, via an Option, the way buddy.go's
// NewBuddyAllocatorWithBlockSize takes explicit parameters instead of
// reading configuration from the environment.
type options struct {
	initialChunk int
	maxSearch    int
	trace        bool
}

func defaultOptions() options {
	return options{
		initialChunk: initialChunkSize,
		maxSearch:    maxSearch,
	}
}

// Option configures a new Allocator.
type Option func(*options) error

// WithInitialChunk overrides the minimum number of bytes requested from the
// PageProvider on a no-fit extension. The first extension, made by
// NewAllocator, is always initialChunkSize (64) bytes and is not affected.
// Must be a positive multiple of 16; defaults to 64.
func WithInitialChunk(bytes int) Option {
	return func(o *options) error {
		if bytes <= 0 || bytes%alignment != 0 {
			return fmt.Errorf("%w: initial chunk must be a positive multiple of %d, got %d", ErrInvalidArgument, alignment, bytes)
		}
		o.initialChunk = bytes
		return nil
	}
}

// WithMaxSearch overrides the bounded best-fit look-ahead. Must be >= 0;
// 0 degenerates to first-fit.
func WithMaxSearch(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("%w: max search must be >= 0, got %d", ErrInvalidArgument, n)
		}
		o.maxSearch = n
		return nil
	}
}

// WithTrace enables per-call logging to the trace destination (trace.go),
// mirroring cznic/memory's package-level trace switch.
func WithTrace() Option {
	return func(o *options) error {
		o.trace = true
		return nil
	}
}
