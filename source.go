package rowtmpl

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/nao1215/rowtmpl/domain/model"
)

// Source is a tabular row provider.
//
// Records is single pass: the sequence may be ranged over once, later
// iterations yield ErrSourceConsumed. Breaking out of the range loop
// releases the resources held for the iteration; Close releases the source
// itself and may be called more than once.
type Source interface {
	// FieldNames returns the header of the source in column order.
	FieldNames() []string
	// Records returns the data rows as a lazy sequence.
	Records() iter.Seq2[model.Record, error]
	// Close releases the source.
	Close() error
}

// Default option values
const (
	// DefaultSampleSize is the number of records used to infer types
	DefaultSampleSize = 100
	// DefaultBatchSize is the number of parquet rows decoded per batch
	DefaultBatchSize = 1024
)

// OpenOptions configures how a source file is opened.
//
// Example:
//
//	opts := NewOpenOptions().
//		WithSheet(1).
//		WithEncoding("windows-1251")
//
//	src, err := Open("data.dbf", opts)
type OpenOptions struct {
	// Sheet is the zero-based sheet index of a workbook
	Sheet int
	// RawCellValue reads unformatted workbook cell values
	RawCellValue bool
	// Detector decides the charset of DBF text fields
	Detector EncodingDetector
	// Table names the table of a SQLite database
	Table string
	// Delimiter overrides the field separator of delimited text
	Delimiter rune
	// BatchSize is the number of parquet rows decoded at once
	BatchSize int64
}

// NewOpenOptions creates default open options (first sheet, detected encoding).
func NewOpenOptions() OpenOptions {
	return OpenOptions{
		Sheet:     0,
		Detector:  ChardetDetector{},
		BatchSize: DefaultBatchSize,
	}
}

// WithSheet selects the sheet by zero-based index.
func (o OpenOptions) WithSheet(index int) OpenOptions {
	o.Sheet = index
	return o
}

// WithRawCellValue reads workbook cells without number formats applied.
func (o OpenOptions) WithRawCellValue(raw bool) OpenOptions {
	o.RawCellValue = raw
	return o
}

// WithDetector sets the charset detector for DBF files.
func (o OpenOptions) WithDetector(d EncodingDetector) OpenOptions {
	o.Detector = d
	return o
}

// WithEncoding fixes the charset of DBF files. An empty name keeps detection.
func (o OpenOptions) WithEncoding(name string) OpenOptions {
	if name == "" {
		return o
	}
	o.Detector = FixedEncoding(name)
	return o
}

// WithTable selects the table of a SQLite database.
func (o OpenOptions) WithTable(name string) OpenOptions {
	o.Table = name
	return o
}

// WithDelimiter overrides the field separator of CSV or TSV input.
func (o OpenOptions) WithDelimiter(d rune) OpenOptions {
	o.Delimiter = d
	return o
}

// WithBatchSize sets the number of parquet rows decoded at once.
func (o OpenOptions) WithBatchSize(n int64) OpenOptions {
	o.BatchSize = n
	return o
}

func (o OpenOptions) detector() EncodingDetector {
	if o.Detector == nil {
		return ChardetDetector{}
	}
	return o.Detector
}

func (o OpenOptions) batchSize() int64 {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// Open opens path as a Source, choosing the adapter from the file extension.
func Open(path string, opts OpenOptions) (Source, error) {
	return OpenContext(context.Background(), path, opts)
}

// OpenContext is like Open but ctx bounds the reads of parquet and SQLite
// sources.
func OpenContext(ctx context.Context, path string, opts OpenOptions) (Source, error) {
	switch DetectFileType(path) {
	case FileTypeXLSX:
		return OpenSheet(path, opts)
	case FileTypeDBF:
		return OpenTable(path, opts)
	case FileTypeCSV, FileTypeTSV:
		return OpenDelimited(path, opts)
	case FileTypeParquet:
		return OpenParquet(ctx, path, opts)
	case FileTypeSQLite:
		return OpenSQLite(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Intersect returns the sorted distinct values of field that are also in
// candidates. The bool result is false when nothing matches. Values are
// compared in their text form. Intersect consumes src.
func Intersect(src Source, field string, candidates []string) ([]string, bool, error) {
	if !slices.Contains(src.FieldNames(), field) {
		return nil, false, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}

	m := newMatcher(candidates, nil)
	for record, err := range src.Records() {
		if err != nil {
			return nil, false, err
		}
		m.add(model.FormatValue(record[field]))
	}
	return m.result()
}

// matcher collects the candidate values seen in a column. Values and
// candidates are compared by key; matches are reported as the caller
// spelled them.
type matcher struct {
	key        func(string) string
	candidates map[string][]string
	found      map[string]struct{}
}

func newMatcher(candidates []string, key func(string) string) *matcher {
	if key == nil {
		key = func(s string) string { return s }
	}
	m := &matcher{
		key:        key,
		candidates: make(map[string][]string, len(candidates)),
		found:      make(map[string]struct{}),
	}
	for _, c := range candidates {
		k := key(c)
		m.candidates[k] = append(m.candidates[k], c)
	}
	return m
}

func (m *matcher) add(value string) {
	for _, c := range m.candidates[m.key(value)] {
		m.found[c] = struct{}{}
	}
}

func (m *matcher) result() ([]string, bool, error) {
	if len(m.found) == 0 {
		return nil, false, nil
	}
	out := make([]string, 0, len(m.found))
	for v := range m.found {
		out = append(out, v)
	}
	slices.Sort(out)
	return out, true, nil
}

// singlePass guards the record sequence of a source.
type singlePass struct {
	started atomic.Bool
	closed  atomic.Bool
}

// begin reports whether the caller may iterate. It yields the error
// explaining why not otherwise.
func (p *singlePass) begin(yield func(model.Record, error) bool) bool {
	if p.closed.Load() {
		yield(nil, fmt.Errorf("%w: source is closed", ErrSourceConsumed))
		return false
	}
	if !p.started.CompareAndSwap(false, true) {
		yield(nil, ErrSourceConsumed)
		return false
	}
	return true
}

// close reports whether this is the first call.
func (p *singlePass) close() bool {
	return p.closed.CompareAndSwap(false, true)
}
