package column

import (
	"errors"
	"fmt"

	"github.com/tidwall/btree"
)

// Raw is an immutable array of u32 key values indexed by row id.
type Raw []uint32

// Dataset holds the raw columns of one benchmark run. Every column has
// the same row count.
type Dataset struct {
	cols []Raw
	rows int
}

func NewDataset(cols ...Raw) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, errors.New("dataset needs at least one column")
	}
	rows := len(cols[0])
	for i, col := range cols {
		if len(col) != rows {
			return nil, fmt.Errorf("data size mismatch: column %d has %d rows, want %d", i, len(col), rows)
		}
	}
	return &Dataset{cols: cols, rows: rows}, nil
}

func (ds *Dataset) Rows() int {
	return ds.rows
}

func (ds *Dataset) ColumnCount() int {
	return len(ds.cols)
}

func (ds *Dataset) Column(idx int) Raw {
	return ds.cols[idx]
}

// Select gathers read-only handles of the named columns, in order.
func (ds *Dataset) Select(idxs []int) ([]Raw, error) {
	ret := make([]Raw, 0, len(idxs))
	for _, idx := range idxs {
		if idx < 0 || idx >= len(ds.cols) {
			return nil, fmt.Errorf("column index %d out of range [0,%d)", idx, len(ds.cols))
		}
		ret = append(ret, ds.cols[idx])
	}
	return ret, nil
}

// Summary describes the value structure of one column.
type Summary struct {
	Rows     int
	Distinct int
	Min      uint32
	Max      uint32
}

// Summarize walks a column once and reports its distinct-value count
// and value range.
func Summarize(col Raw) Summary {
	var set btree.Set[uint32]
	for _, v := range col {
		set.Insert(v)
	}
	ret := Summary{
		Rows:     len(col),
		Distinct: set.Len(),
	}
	if v, ok := set.Min(); ok {
		ret.Min = v
	}
	if v, ok := set.Max(); ok {
		ret.Max = v
	}
	return ret
}
