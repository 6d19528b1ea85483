package stitch

// Pattern-defeating quicksort over packed tuples. The body is generic
// over the four tuple widths, so every instantiation compares and swaps
// fixed-size values with no indirect calls.

const (
	insertionSortThreshold    = 24
	nintherThreshold          = 128
	partialInsertionSortLimit = 8
)

func pdqsort[T tuple[T]](a []T) {
	if len(a) < 2 {
		return
	}
	pdqsortLoop(a, 0, len(a), true)
}

func pdqsortLoop[T tuple[T]](a []T, begin, end int, leftMost bool) {
	for {
		size := end - begin
		// insert sort
		if size < insertionSortThreshold {
			if leftMost {
				insertSort(a, begin, end)
			} else {
				unguardedInsertSort(a, begin, end)
			}
			return
		}

		// pivot: median of 3, pseudomedian of 9 for larger ranges
		s2 := size / 2
		if size > nintherThreshold {
			sort3(a, begin, begin+s2, end-1)
			sort3(a, begin+1, begin+s2-1, end-2)
			sort3(a, begin+2, begin+s2+1, end-3)
			sort3(a, begin+s2-1, begin+s2, begin+s2+1)
		} else {
			sort3(a, begin+s2, begin, end-1)
		}

		// the range left of begin is sorted and its last element is
		// >= pivot iff the pivot equals it; shift equal runs left
		if !leftMost && !a[begin-1].keyLess(a[begin]) {
			begin = partitionLeft(a, begin, end) + 1
			continue
		}

		pivotPos, alreadyPartitioned := partitionRight(a, begin, end)

		lSize := pivotPos - begin
		rSize := end - (pivotPos + 1)
		highlyUnbalanced := lSize < size/8 || rSize < size/8
		if highlyUnbalanced {
			// break up common patterns before recursing
			if lSize > insertionSortThreshold {
				a[begin], a[begin+lSize/4] = a[begin+lSize/4], a[begin]
				a[pivotPos-1], a[pivotPos-lSize/4] = a[pivotPos-lSize/4], a[pivotPos-1]
				if lSize > nintherThreshold {
					a[begin+1], a[begin+lSize/4+1] = a[begin+lSize/4+1], a[begin+1]
					a[begin+2], a[begin+lSize/4+2] = a[begin+lSize/4+2], a[begin+2]
					a[pivotPos-2], a[pivotPos-(lSize/4+1)] = a[pivotPos-(lSize/4+1)], a[pivotPos-2]
					a[pivotPos-3], a[pivotPos-(lSize/4+2)] = a[pivotPos-(lSize/4+2)], a[pivotPos-3]
				}
			}
			if rSize > insertionSortThreshold {
				a[pivotPos+1], a[pivotPos+rSize/4+1] = a[pivotPos+rSize/4+1], a[pivotPos+1]
				a[end-1], a[end-rSize/4] = a[end-rSize/4], a[end-1]
				if rSize > nintherThreshold {
					a[pivotPos+2], a[pivotPos+rSize/4+2] = a[pivotPos+rSize/4+2], a[pivotPos+2]
					a[pivotPos+3], a[pivotPos+rSize/4+3] = a[pivotPos+rSize/4+3], a[pivotPos+3]
					a[end-2], a[end-(1+rSize/4)] = a[end-(1+rSize/4)], a[end-2]
					a[end-3], a[end-(2+rSize/4)] = a[end-(2+rSize/4)], a[end-3]
				}
			}
		} else if alreadyPartitioned {
			if partialInsertionSort(a, begin, pivotPos) &&
				partialInsertionSort(a, pivotPos+1, end) {
				return
			}
		}

		// sort left part, iterate on the right
		pdqsortLoop(a, begin, pivotPos, leftMost)
		begin = pivotPos + 1
		leftMost = false
	}
}

// partitionRight splits [begin,end) around a[begin]; elements equal to
// the pivot end up in the right part. Returns the pivot position and
// whether no swap was needed.
func partitionRight[T tuple[T]](a []T, begin, end int) (int, bool) {
	pivot := a[begin]
	first := begin
	last := end

	// find the first a[first] >= pivot in [begin+1,...)
	for {
		first++
		if !a[first].keyLess(pivot) {
			break
		}
	}

	// find the first a[last] < pivot, guarded only when a[begin+1]
	// was already >= pivot
	if first-begin == 1 {
		for first < last {
			last--
			if a[last].keyLess(pivot) {
				break
			}
		}
	} else {
		for {
			last--
			if a[last].keyLess(pivot) {
				break
			}
		}
	}

	alreadyPartitioned := first >= last

	// keep swapping pairs in the wrong half
	for first < last {
		a[first], a[last] = a[last], a[first]
		for {
			first++
			if !a[first].keyLess(pivot) {
				break
			}
		}
		for {
			last--
			if a[last].keyLess(pivot) {
				break
			}
		}
	}

	pivotPos := first - 1
	a[begin] = a[pivotPos]
	a[pivotPos] = pivot
	return pivotPos, alreadyPartitioned
}

// partitionLeft puts elements equal to the pivot in the left part,
// used on ranges whose predecessor equals the pivot.
func partitionLeft[T tuple[T]](a []T, begin, end int) int {
	pivot := a[begin]
	first := begin
	last := end

	for {
		last--
		if !pivot.keyLess(a[last]) {
			break
		}
	}
	if last+1 == end {
		for first < last {
			first++
			if pivot.keyLess(a[first]) {
				break
			}
		}
	} else {
		for {
			first++
			if pivot.keyLess(a[first]) {
				break
			}
		}
	}

	for first < last {
		a[first], a[last] = a[last], a[first]
		for {
			last--
			if !pivot.keyLess(a[last]) {
				break
			}
		}
		for {
			first++
			if pivot.keyLess(a[first]) {
				break
			}
		}
	}

	pivotPos := last
	a[begin] = a[pivotPos]
	a[pivotPos] = pivot
	return pivotPos
}

// partialInsertionSort bails out once it has moved more than
// partialInsertionSortLimit elements, reporting whether the range came
// out sorted.
func partialInsertionSort[T tuple[T]](a []T, begin, end int) bool {
	if begin == end {
		return true
	}
	limit := 0
	for cur := begin + 1; cur != end; cur++ {
		sift := cur
		sift1 := cur - 1
		if a[sift].keyLess(a[sift1]) {
			tmp := a[sift]
			for {
				a[sift] = a[sift1]
				sift--
				if sift != begin {
					sift1--
					if tmp.keyLess(a[sift1]) {
						continue
					}
				}
				break
			}
			a[sift] = tmp
			limit += cur - sift
		}
		if limit > partialInsertionSortLimit {
			return false
		}
	}
	return true
}

// insert sort [begin,end)
func insertSort[T tuple[T]](a []T, begin, end int) {
	for cur := begin + 1; cur < end; cur++ {
		sift := cur
		sift1 := cur - 1
		if a[sift].keyLess(a[sift1]) {
			tmp := a[sift]
			for {
				a[sift] = a[sift1]
				sift--
				if sift != begin {
					sift1--
					if tmp.keyLess(a[sift1]) {
						continue
					}
				}
				break
			}
			a[sift] = tmp
		}
	}
}

// insert sort [begin,end) where a[begin-1] <= anything in the range
func unguardedInsertSort[T tuple[T]](a []T, begin, end int) {
	for cur := begin + 1; cur < end; cur++ {
		sift := cur
		sift1 := cur - 1
		if a[sift].keyLess(a[sift1]) {
			tmp := a[sift]
			for {
				a[sift] = a[sift1]
				sift--
				sift1--
				if tmp.keyLess(a[sift1]) {
					continue
				}
				break
			}
			a[sift] = tmp
		}
	}
}

// sort a[x],a[y],a[z]
func sort3[T tuple[T]](a []T, x, y, z int) {
	sort2(a, x, y)
	sort2(a, y, z)
	sort2(a, x, y)
}

func sort2[T tuple[T]](a []T, x, y int) {
	if a[y].keyLess(a[x]) {
		a[x], a[y] = a[y], a[x]
	}
}
