package rowtmpl

import (
	"encoding/binary"
	"fmt"
	"iter"
	"slices"
	"strings"

	godbf "github.com/LindsayBradford/go-dbf"
	"github.com/shopspring/decimal"

	"github.com/nao1215/rowtmpl/domain/model"
)

const (
	// dbfHeaderLenOffset is the position of the header length in a DBF file
	dbfHeaderLenOffset = 8
	// maxEncodingSample limits the bytes handed to the charset detector
	maxEncodingSample = 64 * 1024
)

// TableSource reads the records of a DBF table.
// Values are the decoded field text with surrounding spaces trimmed;
// rows flagged as deleted are skipped.
type TableSource struct {
	path     string
	table    *godbf.DbfTable
	encoding string
	header   model.Header
	pass     singlePass
}

var _ Source = (*TableSource)(nil)

// OpenTable loads the DBF file at path. The charset of text fields comes
// from opts.Detector, which sniffs the record area by default.
func OpenTable(path string, opts OpenOptions) (*TableSource, error) {
	data, err := newFile(path).readAll()
	if err != nil {
		return nil, openError(path, err)
	}

	encoding, err := opts.detector().Detect(dbfRecordSample(data))
	if err != nil {
		return nil, openError(path, err)
	}

	table, err := godbf.NewFromByteArray(data, encoding)
	if err != nil {
		return nil, openError(path, NewErrorContext("parse table", "").WithDetails("encoding "+encoding).Error(err))
	}

	header := model.NewHeader(table.FieldNames())
	if err := header.Validate(); err != nil {
		return nil, openError(path, err)
	}

	return &TableSource{
		path:     path,
		table:    table,
		encoding: encoding,
		header:   header,
	}, nil
}

// dbfRecordSample returns the record area of a DBF image, which is where
// the text to sniff lives.
func dbfRecordSample(data []byte) []byte {
	if len(data) < dbfHeaderLenOffset+2 {
		return data
	}
	start := int(binary.LittleEndian.Uint16(data[dbfHeaderLenOffset:]))
	if start <= 0 || start >= len(data) {
		return data
	}
	sample := data[start:]
	if len(sample) > maxEncodingSample {
		sample = sample[:maxEncodingSample]
	}
	return sample
}

// Encoding returns the charset used to decode text fields.
func (s *TableSource) Encoding() string {
	return s.encoding
}

// FieldNames returns the field names of the table.
func (s *TableSource) FieldNames() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// NumberOfRecords returns the record count stored in the table header,
// deleted rows included.
func (s *TableSource) NumberOfRecords() int {
	return s.table.NumberOfRecords()
}

// Records yields every row that is not flagged as deleted.
func (s *TableSource) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if !s.pass.begin(yield) {
			return
		}

		for row := range s.table.NumberOfRecords() {
			values, deleted, err := s.readRow(row)
			if err != nil {
				yield(nil, err)
				return
			}
			if deleted {
				continue
			}
			if !yield(model.NewStringRecord(s.header, values), nil) {
				return
			}
		}
	}
}

// readRow reads every field of row unless it is flagged as deleted.
// The table reader indexes its buffer without bounds checks, so a panic
// on a malformed record is turned into an error.
func (s *TableSource) readRow(row int) (values []string, deleted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewErrorContext("read record", s.path).WithDetails(fmt.Sprintf("row %d", row)).Error(fmt.Errorf("%v", r))
		}
	}()

	if s.table.RowIsDeleted(row) {
		return nil, true, nil
	}
	values = make([]string, len(s.header))
	for i := range s.header {
		values[i] = strings.TrimSpace(s.table.FieldValue(row, i))
	}
	return values, false, nil
}

// Intersect returns the sorted candidates that occur in field; false means
// no value matched. Numeric fields compare by value, so "11" matches a
// stored "11.00". Deleted rows are ignored. It reads the table directly
// and leaves Records available.
func (s *TableSource) Intersect(field string, candidates []string) ([]string, bool, error) {
	idx := slices.Index(s.header, field)
	if idx < 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}

	var key func(string) string
	if s.isNumeric(idx) {
		key = numericKey
	}
	m := newMatcher(candidates, key)
	for row := range s.table.NumberOfRecords() {
		values, deleted, err := s.readRow(row)
		if err != nil {
			return nil, false, err
		}
		if !deleted {
			m.add(values[idx])
		}
	}
	return m.result()
}

// isNumeric reports whether the field at idx is an N or F field.
func (s *TableSource) isNumeric(idx int) bool {
	fields := s.table.Fields()
	if idx >= len(fields) {
		return false
	}
	switch byte(fields[idx].FieldType()) {
	case 'N', 'F':
		return true
	default:
		return false
	}
}

// numericKey spells a number canonically. Text that is not a number is
// kept as is.
func numericKey(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.String()
}

// Close releases the table. The file is read fully at open, so there is no
// handle to release.
func (s *TableSource) Close() error {
	s.pass.close()
	return nil
}
