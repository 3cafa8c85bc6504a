package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimmedPtr(t *testing.T) {
	assert.Nil(t, TrimmedPtr(nil))
	assert.Nil(t, TrimmedPtr(StringPtr("   ")))
	assert.Equal(t, "Poster", *TrimmedPtr(StringPtr("  Poster ")))
}

func TestLowerPtr(t *testing.T) {
	assert.Nil(t, LowerPtr(nil))
	assert.Equal(t, "0xdead", *LowerPtr(StringPtr("0xDEAD")))
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "x", SafeString(StringPtr("x")))
	assert.True(t, StringNilOrEmpty(StringPtr("")))
	assert.False(t, StringNilOrEmpty(StringPtr("x")))
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 3, nil},
		{"invalid size", []int{1, 2}, 0, nil},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"single chunk", []int{1, 2}, 200, [][]int{{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.items, tt.size))
		})
	}
}
