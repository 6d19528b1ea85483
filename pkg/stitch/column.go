package stitch

import (
	"fmt"

	"github.com/CaiusDai/whippet-sort/pkg/column"
	"github.com/CaiusDai/whippet-sort/pkg/util"
)

// Column is a stitched column: rows*(width+1) words in one contiguous
// buffer, each tuple a row id followed by width key words. It lives for
// one round; construct, sort, query, Close.
type Column struct {
	width int
	rows  int
	words []uint32
}

// Stitch packs the selected raw columns and the current permutation
// into tuples. For each position i it writes indices[i] and then
// cols[k][indices[i]] for every key column, so raw columns are read in
// permutation order.
func Stitch(cols []column.Raw, indices []uint32) (*Column, error) {
	width := len(cols)
	if width < 1 || width > MaxCompareFactor {
		return nil, fmt.Errorf("unsupported compare factor %d, want [1,%d]", width, MaxCompareFactor)
	}
	rows := len(indices)
	for k, col := range cols {
		if len(col) != rows {
			return nil, fmt.Errorf("column %d has %d rows, permutation has %d", k, len(col), rows)
		}
	}

	ret := &Column{width: width, rows: rows}
	if rows == 0 {
		return ret, nil
	}
	ret.words = make([]uint32, rows*(width+1))

	tupleBytes := (width + 1) * wordBytes
	cur := util.SlicePointer(ret.words)
	for _, id := range indices {
		util.Store[uint32](id, cur)
		for k := 0; k < width; k++ {
			util.Store2[uint32](cols[k][id], cur, (k+1)*wordBytes)
		}
		cur = util.PointerAdd(cur, tupleBytes)
	}
	return ret, nil
}

const wordBytes = 4

func (c *Column) Width() int {
	return c.width
}

func (c *Column) Rows() int {
	return c.rows
}

// Close drops the tuple buffer. The column must not be used afterwards.
func (c *Column) Close() {
	c.words = nil
	c.rows = 0
}

// view reinterprets the word buffer as packed tuples of one width. The
// tuple structs are pure uint32 layouts, so the cast is exact.
func view[T tuple[T]](c *Column) []T {
	return util.PointerToSlice[T](util.SlicePointer(c.words), c.rows)
}

// Sort orders the whole tuple array ascending by key words. Row ids
// travel with their tuple; ties keep no particular order.
func (c *Column) Sort() {
	switch c.width {
	case 1:
		pdqsort(view[tuple1](c))
	case 2:
		pdqsort(view[tuple2](c))
	case 3:
		pdqsort(view[tuple3](c))
	case 4:
		pdqsort(view[tuple4](c))
	default:
		panic(fmt.Sprintf("unsupported compare factor %d", c.width))
	}
}

// SortGroups sorts each incoming group independently, never moving a
// tuple across a group boundary. Length-1 groups are skipped.
func (c *Column) SortGroups(groups []SortingGroup) {
	switch c.width {
	case 1:
		sortGroups(view[tuple1](c), groups)
	case 2:
		sortGroups(view[tuple2](c), groups)
	case 3:
		sortGroups(view[tuple3](c), groups)
	case 4:
		sortGroups(view[tuple4](c), groups)
	default:
		panic(fmt.Sprintf("unsupported compare factor %d", c.width))
	}
}

func sortGroups[T tuple[T]](ts []T, groups []SortingGroup) {
	for _, g := range groups {
		if g.Length < 2 {
			continue
		}
		util.AssertFunc(g.Start >= 0 && g.Start+g.Length <= len(ts))
		pdqsort(ts[g.Start : g.Start+g.Length])
	}
}

// GroupAndIndex scans the sorted tuples once, copying out the row ids
// and emitting a group boundary wherever the key words change.
func (c *Column) GroupAndIndex() SortingState {
	switch c.width {
	case 1:
		return groupAndIndex(view[tuple1](c))
	case 2:
		return groupAndIndex(view[tuple2](c))
	case 3:
		return groupAndIndex(view[tuple3](c))
	case 4:
		return groupAndIndex(view[tuple4](c))
	default:
		panic(fmt.Sprintf("unsupported compare factor %d", c.width))
	}
}

func groupAndIndex[T tuple[T]](ts []T) SortingState {
	n := len(ts)
	state := SortingState{Indices: make([]uint32, n)}
	if n == 0 {
		return state
	}
	start := 0
	for i := 0; i+1 < n; i++ {
		state.Indices[i] = ts[i].id()
		if !ts[i].keyEqual(ts[i+1]) {
			state.Groups = append(state.Groups, SortingGroup{Start: start, Length: i - start + 1})
			start = i + 1
		}
	}
	state.Indices[n-1] = ts[n-1].id()
	state.Groups = append(state.Groups, SortingGroup{Start: start, Length: n - start})
	return state
}

// Refine is the restricted group detector for rounds after the first:
// sub-groups are emitted within each incoming group and always closed
// at the incoming group's end, so the result refines prev.
func (c *Column) Refine(prev []SortingGroup) SortingState {
	switch c.width {
	case 1:
		return refineGroups(view[tuple1](c), prev)
	case 2:
		return refineGroups(view[tuple2](c), prev)
	case 3:
		return refineGroups(view[tuple3](c), prev)
	case 4:
		return refineGroups(view[tuple4](c), prev)
	default:
		panic(fmt.Sprintf("unsupported compare factor %d", c.width))
	}
}

func refineGroups[T tuple[T]](ts []T, prev []SortingGroup) SortingState {
	state := SortingState{Indices: make([]uint32, len(ts))}
	for _, g := range prev {
		end := g.Start + g.Length
		util.AssertFunc(g.Start >= 0 && end <= len(ts))
		start := g.Start
		for i := g.Start; i < end; i++ {
			state.Indices[i] = ts[i].id()
			if i+1 == end || !ts[i].keyEqual(ts[i+1]) {
				state.Groups = append(state.Groups, SortingGroup{Start: start, Length: i - start + 1})
				start = i + 1
			}
		}
	}
	return state
}

// IndexOnly copies out the row ids in tuple order, the final
// permutation after the last round.
func (c *Column) IndexOnly() []uint32 {
	ret := make([]uint32, c.rows)
	stride := c.width + 1
	for i := range ret {
		ret[i] = c.words[i*stride]
	}
	return ret
}
