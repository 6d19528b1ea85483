package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CaiusDai/whippet-sort/pkg/column"
)

func Test_verifySorted(t *testing.T) {
	cols := []column.Raw{{2, 1, 4, 1}, {3, 3, 4, 4}}

	// (1,3)(1,4)(2,3)(4,4)
	assert.True(t, VerifySorted(cols, []uint32{1, 3, 0, 2}))
	// swapping the tie-breaking pair on the first key breaks the order
	assert.False(t, VerifySorted(cols, []uint32{3, 1, 0, 2}))
}

func Test_verifyRejectsNonPermutation(t *testing.T) {
	cols := []column.Raw{{1, 2, 3}}

	assert.False(t, VerifySorted(cols, []uint32{0, 0, 1}))
	assert.False(t, VerifySorted(cols, []uint32{0, 1, 5}))
	assert.False(t, VerifySorted(cols, []uint32{0, 1}))
}

func Test_verifyColumnLengthMismatch(t *testing.T) {
	cols := []column.Raw{{1, 2, 3}, {1, 2}}
	assert.False(t, VerifySorted(cols, []uint32{0, 1, 2}))
}

func Test_verifyEmpty(t *testing.T) {
	assert.True(t, VerifySorted([]column.Raw{{}}, []uint32{}))
}

func Test_verifyEqualKeys(t *testing.T) {
	cols := []column.Raw{{5, 5, 5}}
	assert.True(t, VerifySorted(cols, []uint32{2, 0, 1}))
}
