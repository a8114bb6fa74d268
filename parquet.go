package rowtmpl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/nao1215/rowtmpl/domain/model"
)

// ParquetSource reads a parquet file batch by batch.
// Null cells are nil; other cells keep their native Go type where one exists.
type ParquetSource struct {
	ctx    context.Context
	path   string
	pq     *pqfile.Reader
	reader *pqarrow.FileReader
	header model.Header
	pass   singlePass
}

var _ Source = (*ParquetSource)(nil)

// OpenParquet opens the parquet file at path. A compressed file is
// decompressed into memory since parquet needs random access.
func OpenParquet(ctx context.Context, path string, opts OpenOptions) (*ParquetSource, error) {
	f := newFile(path)

	var (
		src parquet.ReaderAtSeeker
		fh  *os.File
	)
	if f.isCompressed() {
		data, err := f.readAll()
		if err != nil {
			return nil, openError(path, err)
		}
		src = bytes.NewReader(data)
	} else {
		var err error
		fh, err = os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
		if err != nil {
			return nil, openError(path, err)
		}
		src = fh
	}

	s, err := newParquetSource(ctx, path, src, opts)
	if err != nil {
		if fh != nil {
			_ = fh.Close() // Ignore close error during error handling
		}
		return nil, openError(path, err)
	}
	return s, nil
}

func newParquetSource(ctx context.Context, path string, src parquet.ReaderAtSeeker, opts OpenOptions) (*ParquetSource, error) {
	pq, err := pqfile.NewParquetReader(src)
	if err != nil {
		return nil, NewErrorContext("read parquet footer", "").Error(err)
	}

	reader, err := pqarrow.NewFileReader(pq, pqarrow.ArrowReadProperties{BatchSize: opts.batchSize()}, memory.DefaultAllocator)
	if err != nil {
		_ = pq.Close() // Ignore close error during error handling
		return nil, NewErrorContext("create arrow reader", "").Error(err)
	}

	schema, err := reader.Schema()
	if err != nil {
		_ = pq.Close() // Ignore close error during error handling
		return nil, NewErrorContext("read schema", "").Error(err)
	}
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := header.Validate(); err != nil {
		_ = pq.Close() // Ignore close error during error handling
		return nil, err
	}

	return &ParquetSource{
		ctx:    ctx,
		path:   path,
		pq:     pq,
		reader: reader,
		header: header,
	}, nil
}

// FieldNames returns the column names of the schema.
func (s *ParquetSource) FieldNames() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// NumRows returns the number of rows in the file.
func (s *ParquetSource) NumRows() int64 {
	return s.pq.NumRows()
}

// Records yields every row of every row group.
func (s *ParquetSource) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if !s.pass.begin(yield) {
			return
		}

		rr, err := s.reader.GetRecordReader(s.ctx, nil, nil)
		if err != nil {
			yield(nil, NewErrorContext("read record batches", s.path).Error(err))
			return
		}
		defer rr.Release()

		for rr.Next() {
			batch := rr.Record()
			cols := batch.Columns()
			for row := range int(batch.NumRows()) {
				values := make([]any, len(cols))
				for i, col := range cols {
					values[i] = arrowValue(col, row)
				}
				if !yield(model.NewRecord(s.header, values), nil) {
					return
				}
			}
		}
		// The reader reports io.EOF once every batch has been read.
		if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
			yield(nil, NewErrorContext("read record batches", s.path).Error(err))
		}
	}
}

// arrowValue extracts the cell at row of col as a plain Go value.
func arrowValue(col arrow.Array, row int) any {
	if col.IsNull(row) {
		return nil
	}
	switch a := col.(type) {
	case *array.String:
		return a.Value(row)
	case *array.LargeString:
		return a.Value(row)
	case *array.Binary:
		return string(a.Value(row))
	case *array.Boolean:
		return a.Value(row)
	case *array.Int8:
		return int64(a.Value(row))
	case *array.Int16:
		return int64(a.Value(row))
	case *array.Int32:
		return int64(a.Value(row))
	case *array.Int64:
		return a.Value(row)
	case *array.Uint8:
		return uint64(a.Value(row))
	case *array.Uint16:
		return uint64(a.Value(row))
	case *array.Uint32:
		return uint64(a.Value(row))
	case *array.Uint64:
		return a.Value(row)
	case *array.Float32:
		return float64(a.Value(row))
	case *array.Float64:
		return a.Value(row)
	case *array.Date32:
		return a.Value(row).ToTime()
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(row).ToTime(unit)
	default:
		return col.ValueStr(row)
	}
}

// Close closes the parquet reader, which closes the file it reads.
func (s *ParquetSource) Close() error {
	if !s.pass.close() {
		return nil
	}
	return s.pq.Close()
}
