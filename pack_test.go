package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackWordRoundTrip(t *testing.T) {
	tests := []struct {
		name                        string
		size                        int
		alloc, prevAlloc, prevMini bool
	}{
		{"all_false", 16, false, false, false},
		{"alloc_only", 32, true, false, false},
		{"prev_alloc_only", 48, false, true, false},
		{"prev_mini_only", 16, false, false, true},
		{"all_true", 64, true, true, true},
		{"large_size", 18736, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := packWord(tt.size, tt.alloc, tt.prevAlloc, tt.prevMini)
			assert.Equal(t, tt.size, wordBlockSize(w))
			assert.Equal(t, tt.alloc, wordAlloc(w))
			assert.Equal(t, tt.prevAlloc, wordPrevAlloc(w))
			assert.Equal(t, tt.prevMini, wordPrevMini(w))
		})
	}
}

func TestWithAlloc(t *testing.T) {
	w := packWord(32, false, true, false)
	w2 := withAlloc(w, true)
	assert.True(t, wordAlloc(w2))
	assert.Equal(t, 32, wordBlockSize(w2))
	assert.True(t, wordPrevAlloc(w2))

	w3 := withAlloc(w2, false)
	assert.False(t, wordAlloc(w3))
	assert.Equal(t, 32, wordBlockSize(w3))
}

func TestWithPrevFlags(t *testing.T) {
	w := packWord(32, true, false, false)
	w2 := withPrevFlags(w, true, true)
	assert.True(t, wordAlloc(w2))
	assert.Equal(t, 32, wordBlockSize(w2))
	assert.True(t, wordPrevAlloc(w2))
	assert.True(t, wordPrevMini(w2))

	w3 := withPrevFlags(w2, false, false)
	assert.False(t, wordPrevAlloc(w3))
	assert.False(t, wordPrevMini(w3))
	assert.True(t, wordAlloc(w3))
}
