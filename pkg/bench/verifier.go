package bench

import (
	"github.com/CaiusDai/whippet-sort/pkg/column"
)

// VerifySorted reports whether perm is a permutation of {0..N-1} whose
// order is lexicographically non-decreasing over the supplied columns.
func VerifySorted(cols []column.Raw, perm []uint32) bool {
	n := len(perm)
	for _, col := range cols {
		if len(col) != n {
			return false
		}
	}

	seen := make([]bool, n)
	for _, id := range perm {
		if int(id) >= n || seen[id] {
			return false
		}
		seen[id] = true
	}

	for i := 0; i+1 < n; i++ {
		if keyVectorGreater(cols, perm[i], perm[i+1]) {
			return false
		}
	}
	return true
}

func keyVectorGreater(cols []column.Raw, lhs, rhs uint32) bool {
	for _, col := range cols {
		if col[lhs] != col[rhs] {
			return col[lhs] > col[rhs]
		}
	}
	return false
}
