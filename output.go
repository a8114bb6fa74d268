package rowtmpl

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
)

// OutputOptions configures how rendered rows are persisted.
//
// Example:
//
//	options := NewOutputOptions().
//		WithSeparator(";\n").
//		WithTrailingSeparator(true)
//
//	n, err := WriteOutput(w, seq, options)
type OutputOptions struct {
	// Separator is written between rendered rows
	Separator string
	// TrailingSeparator also writes Separator after the last row
	TrailingSeparator bool
}

// NewOutputOptions creates default output options (rows joined by newlines).
func NewOutputOptions() OutputOptions {
	return OutputOptions{
		Separator: "\n",
	}
}

// WithSeparator sets the text written between rows.
func (o OutputOptions) WithSeparator(sep string) OutputOptions {
	o.Separator = sep
	return o
}

// WithTrailingSeparator terminates the last row with the separator as well.
func (o OutputOptions) WithTrailingSeparator(trailing bool) OutputOptions {
	o.TrailingSeparator = trailing
	return o
}

// WriteOutput writes the rows of seq to w joined by the separator and
// returns the number of rows written. It stops at the first error of seq.
func WriteOutput(w io.Writer, seq iter.Seq2[string, error], opts OutputOptions) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for row, err := range seq {
		if err != nil {
			if flushErr := bw.Flush(); flushErr != nil {
				return n, flushErr
			}
			return n, err
		}
		if n > 0 {
			if _, err := bw.WriteString(opts.Separator); err != nil {
				return n, err
			}
		}
		if _, err := bw.WriteString(row); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 && opts.TrailingSeparator {
		if _, err := bw.WriteString(opts.Separator); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// outputFile closes the compression writer before the file it wraps.
type outputFile struct {
	io.Writer
	file    *os.File
	cleanup func() error
}

// Close flushes the compressed stream and closes the file.
func (o *outputFile) Close() error {
	var err error
	if o.cleanup != nil {
		err = o.cleanup()
	}
	if syncErr := o.file.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := o.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// CreateOutput creates the file at path and returns a writer that compresses
// with compression. Closing the writer finishes the stream and the file.
func CreateOutput(path string, compression CompressionType) (io.WriteCloser, error) {
	f, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w, cleanup, err := NewCompressionHandler(compression).CreateWriter(f)
	if err != nil {
		_ = f.Close()       // Ignore close error during error handling
		_ = os.Remove(path) // Ignore remove error during error handling
		return nil, err
	}
	return &outputFile{Writer: w, file: f, cleanup: cleanup}, nil
}

// OutputCompression returns the compression implied by the extension of path.
func OutputCompression(path string) CompressionType {
	return detectCompressionType(path)
}
