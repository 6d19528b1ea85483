package stitch

// MaxCompareFactor is the widest supported stitched tuple. The sort
// kernel is monomorphized per width, so widths outside [1,4] are
// rejected at construction.
const MaxCompareFactor = 4

// One packed tuple per row: slot 0 carries the row id, the remaining
// slots carry the key words copied from the raw columns. The layouts
// contain only uint32 fields, so a []tupleN view over the word buffer
// is exactly the back-to-back packed form.

type tuple1 struct {
	rowID uint32
	keys  [1]uint32
}

type tuple2 struct {
	rowID uint32
	keys  [2]uint32
}

type tuple3 struct {
	rowID uint32
	keys  [3]uint32
}

type tuple4 struct {
	rowID uint32
	keys  [4]uint32
}

// tuple constrains the sort/group kernels to the four fixed widths.
// Instantiation monomorphizes the comparator; there is no indirect
// comparator call on the hot path.
type tuple[T any] interface {
	tuple1 | tuple2 | tuple3 | tuple4
	keyLess(rhs T) bool
	keyEqual(rhs T) bool
	id() uint32
}

func (t tuple1) id() uint32 { return t.rowID }
func (t tuple2) id() uint32 { return t.rowID }
func (t tuple3) id() uint32 { return t.rowID }
func (t tuple4) id() uint32 { return t.rowID }

func (t tuple1) keyEqual(rhs tuple1) bool { return t.keys == rhs.keys }
func (t tuple2) keyEqual(rhs tuple2) bool { return t.keys == rhs.keys }
func (t tuple3) keyEqual(rhs tuple3) bool { return t.keys == rhs.keys }
func (t tuple4) keyEqual(rhs tuple4) bool { return t.keys == rhs.keys }

// Key order is unsigned lexicographic over the key words. The row id in
// slot 0 never takes part in the comparison.

func (t tuple1) keyLess(rhs tuple1) bool {
	return t.keys[0] < rhs.keys[0]
}

func (t tuple2) keyLess(rhs tuple2) bool {
	if t.keys[0] != rhs.keys[0] {
		return t.keys[0] < rhs.keys[0]
	}
	return t.keys[1] < rhs.keys[1]
}

func (t tuple3) keyLess(rhs tuple3) bool {
	if t.keys[0] != rhs.keys[0] {
		return t.keys[0] < rhs.keys[0]
	}
	if t.keys[1] != rhs.keys[1] {
		return t.keys[1] < rhs.keys[1]
	}
	return t.keys[2] < rhs.keys[2]
}

func (t tuple4) keyLess(rhs tuple4) bool {
	if t.keys[0] != rhs.keys[0] {
		return t.keys[0] < rhs.keys[0]
	}
	if t.keys[1] != rhs.keys[1] {
		return t.keys[1] < rhs.keys[1]
	}
	if t.keys[2] != rhs.keys[2] {
		return t.keys[2] < rhs.keys[2]
	}
	return t.keys[3] < rhs.keys[3]
}
