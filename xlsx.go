package rowtmpl

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/rowtmpl/domain/model"
)

// SheetSource reads one sheet of an XLSX workbook.
// The first row is the header and every later row is a record.
type SheetSource struct {
	path   string
	book   *excelize.File
	sheet  string
	header model.Header
	opts   []excelize.Options
	pass   singlePass
}

var _ Source = (*SheetSource)(nil)

// OpenSheet opens the sheet at opts.Sheet of the workbook at path.
// A compressed workbook is decompressed into memory first.
func OpenSheet(path string, opts OpenOptions) (*SheetSource, error) {
	f := newFile(path)

	var (
		book *excelize.File
		err  error
	)
	if f.isCompressed() {
		data, readErr := f.readAll()
		if readErr != nil {
			return nil, openError(path, readErr)
		}
		book, err = excelize.OpenReader(bytes.NewReader(data))
	} else {
		book, err = excelize.OpenFile(path)
	}
	if err != nil {
		return nil, openError(path, err)
	}

	sheet := ""
	if opts.Sheet >= 0 {
		sheet = book.GetSheetName(opts.Sheet)
	}
	if sheet == "" {
		_ = book.Close() // Ignore close error during error handling
		return nil, fmt.Errorf("%w: index %d of %s has %d sheets", ErrNoSuchSheet, opts.Sheet, path, len(book.GetSheetList()))
	}

	s := &SheetSource{
		path:  path,
		book:  book,
		sheet: sheet,
	}
	if opts.RawCellValue {
		s.opts = []excelize.Options{{RawCellValue: true}}
	}

	header, err := s.readHeader()
	if err != nil {
		_ = book.Close() // Ignore close error during error handling
		return nil, openError(path, NewErrorContext("read header", "").WithSheet(sheet).Error(err))
	}
	if err := header.Validate(); err != nil {
		_ = book.Close() // Ignore close error during error handling
		return nil, openError(path, err)
	}
	s.header = header
	return s, nil
}

func (s *SheetSource) readHeader() (model.Header, error) {
	rows, err := s.book.Rows(s.sheet)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Ignore close error in cleanup
	}()

	if !rows.Next() {
		return model.Header{}, rows.Error()
	}
	cols, err := rows.Columns(s.opts...)
	if err != nil {
		return nil, err
	}
	return model.NewHeader(cols), nil
}

// SheetName returns the name of the selected sheet.
func (s *SheetSource) SheetName() string {
	return s.sheet
}

// FieldNames returns the header row.
func (s *SheetSource) FieldNames() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Dimensions returns the number of rows and columns of the sheet, header
// included. The stored sheet dimension is used when it spans a range;
// otherwise the rows are scanned.
func (s *SheetSource) Dimensions() (rows, cols int, err error) {
	dim, err := s.book.GetSheetDimension(s.sheet)
	if err == nil {
		if _, end, ok := strings.Cut(dim, ":"); ok {
			c, r, err := excelize.CellNameToCoordinates(end)
			if err == nil {
				return r, c, nil
			}
		}
	}
	return s.scanDimensions()
}

func (s *SheetSource) scanDimensions() (int, int, error) {
	it, err := s.book.Rows(s.sheet)
	if err != nil {
		return 0, 0, NewErrorContext("scan dimensions", s.path).WithSheet(s.sheet).Error(err)
	}
	defer func() {
		_ = it.Close() // Ignore close error in cleanup
	}()

	rows, cols := 0, 0
	for it.Next() {
		row, err := it.Columns()
		if err != nil {
			return 0, 0, NewErrorContext("scan dimensions", s.path).WithSheet(s.sheet).Error(err)
		}
		rows++
		cols = max(cols, len(row))
	}
	return rows, cols, it.Error()
}

// Records yields every row after the header. Short rows are padded with "".
func (s *SheetSource) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if !s.pass.begin(yield) {
			return
		}

		rows, err := s.book.Rows(s.sheet)
		if err != nil {
			yield(nil, NewErrorContext("read rows", s.path).WithSheet(s.sheet).Error(err))
			return
		}
		defer func() {
			_ = rows.Close() // Ignore close error in cleanup
		}()

		header := true
		for rows.Next() {
			cols, err := rows.Columns(s.opts...)
			if err != nil {
				yield(nil, NewErrorContext("read rows", s.path).WithSheet(s.sheet).Error(err))
				return
			}
			if header {
				header = false
				continue
			}
			if !yield(model.NewStringRecord(s.header, cols), nil) {
				return
			}
		}
		if err := rows.Error(); err != nil {
			yield(nil, NewErrorContext("read rows", s.path).WithSheet(s.sheet).Error(err))
		}
	}
}

// Close closes the workbook.
func (s *SheetSource) Close() error {
	if !s.pass.close() {
		return nil
	}
	return s.book.Close()
}
