package rowtmpl

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/nao1215/rowtmpl/domain/model"
)

const utf8BOM = "\ufeff"

// DelimitedSource reads CSV or TSV text, optionally compressed.
// The first line is the header.
type DelimitedSource struct {
	path   string
	reader *csv.Reader
	closer func() error
	header model.Header
	pass   singlePass
}

var _ Source = (*DelimitedSource)(nil)

// OpenDelimited opens a CSV or TSV file. The separator follows the file
// extension unless opts.Delimiter is set.
func OpenDelimited(path string, opts OpenOptions) (*DelimitedSource, error) {
	f := newFile(path)
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, openError(path, err)
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	switch {
	case opts.Delimiter != 0:
		r.Comma = opts.Delimiter
	case f.fileType == FileTypeTSV:
		r.Comma = '\t'
		r.LazyQuotes = true
	}

	first, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		_ = closer() // Ignore close error during error handling
		return nil, openError(path, NewErrorContext("read header", "").Error(err))
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], utf8BOM)
	}
	header := model.NewHeader(first)
	if err := header.Validate(); err != nil {
		_ = closer() // Ignore close error during error handling
		return nil, openError(path, err)
	}

	return &DelimitedSource{
		path:   path,
		reader: r,
		closer: closer,
		header: header,
	}, nil
}

// FieldNames returns the header line.
func (s *DelimitedSource) FieldNames() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Records yields every line after the header.
func (s *DelimitedSource) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if !s.pass.begin(yield) {
			return
		}
		for {
			line, err := s.reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, NewErrorContext("read line", s.path).Error(err))
				return
			}
			if !yield(model.NewStringRecord(s.header, line), nil) {
				return
			}
		}
	}
}

// Close closes the underlying file.
func (s *DelimitedSource) Close() error {
	if !s.pass.close() {
		return nil
	}
	return s.closer()
}
