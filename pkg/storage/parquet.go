package storage

import (
	"errors"
	"fmt"
	"io"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqReader "github.com/xitongsys/parquet-go/reader"
	pqWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/CaiusDai/whippet-sort/pkg/column"
)

// Key columns are persisted as INT32 leaves; the u32 key words travel
// as raw bits through the int32 physical type.

const readBatch = 64 * 1024

// SaveDataset writes every column of the dataset into one parquet
// file, columns named c0..cK-1.
func SaveDataset(path string, data *column.Dataset) error {
	fw, err := pqLocal.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file %s: %w", path, err)
	}
	defer fw.Close()

	md := make([]string, data.ColumnCount())
	for i := range md {
		md[i] = fmt.Sprintf("name=c%d, type=INT32", i)
	}
	pw, err := pqWriter.NewCSVWriter(md, fw, 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	for row := 0; row < data.Rows(); row++ {
		// the writer buffers the record slice itself until WriteStop,
		// so every row needs its own slice
		rec := make([]interface{}, data.ColumnCount())
		for k := 0; k < data.ColumnCount(); k++ {
			rec[k] = int32(data.Column(k)[row])
		}
		if err = pw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// SavePermutation writes a row-id permutation as a one-column parquet
// file so downstream readers can apply the sort order.
func SavePermutation(path string, perm []uint32) error {
	fw, err := pqLocal.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file %s: %w", path, err)
	}
	defer fw.Close()

	pw, err := pqWriter.NewCSVWriter([]string{"name=row_id, type=INT32"}, fw, 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, id := range perm {
		if err = pw.Write([]interface{}{int32(id)}); err != nil {
			return fmt.Errorf("write permutation: %w", err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// LoadDataset reads every column of a parquet file written by
// SaveDataset (or any file of plain INT32 leaves) back into memory.
func LoadDataset(path string) (*column.Dataset, error) {
	fr, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := pqReader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, fmt.Errorf("open parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := int(pr.GetNumRows())
	colCount := int(pr.SchemaHandler.GetColumnNum())
	if colCount == 0 {
		return nil, errors.New("parquet file has no columns")
	}

	cols := make([]column.Raw, colCount)
	for i := 0; i < colCount; i++ {
		col, err := readColumn(pr, i, rows)
		if err != nil {
			return nil, fmt.Errorf("read column %d: %w", i, err)
		}
		cols[i] = col
	}
	return column.NewDataset(cols...)
}

func readColumn(pr *pqReader.ParquetReader, idx, rows int) (column.Raw, error) {
	col := make(column.Raw, 0, rows)
	for len(col) < rows {
		values, _, _, err := pr.ReadColumnByIndex(int64(idx), readBatch)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(values) == 0 {
			break
		}
		for _, v := range values {
			raw, ok := v.(int32)
			if !ok {
				return nil, fmt.Errorf("value %v is %T, want int32", v, v)
			}
			col = append(col, uint32(raw))
		}
	}
	if len(col) != rows {
		return nil, fmt.Errorf("short column: got %d rows, want %d", len(col), rows)
	}
	return col, nil
}
