package rowtmpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/nao1215/rowtmpl/domain/model"
)

// Log messages and fields
const (
	logMsgSourceOpened = "source opened"
	logMsgRowSkipped   = "row skipped"
	logMsgRunFinished  = "conversion finished"

	logFieldPath     = "path"
	logFieldFields   = "fields"
	logFieldEncoding = "encoding"
	logFieldSheet    = "sheet"
	logFieldRow      = "row"
	logFieldRendered = "rendered"
	logFieldSkipped  = "skipped"
)

// ErrorPolicy decides what happens when a record fails to render.
type ErrorPolicy int

const (
	// ErrorPolicyAbort stops at the first failing record
	ErrorPolicyAbort ErrorPolicy = iota
	// ErrorPolicySkip logs the failing record and continues
	ErrorPolicySkip
)

// String returns the string representation of ErrorPolicy
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyAbort:
		return "abort"
	case ErrorPolicySkip:
		return "skip"
	default:
		return "abort"
	}
}

// ParseErrorPolicy resolves "abort" or "skip".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "", "abort":
		return ErrorPolicyAbort, nil
	case "skip":
		return ErrorPolicySkip, nil
	default:
		return ErrorPolicyAbort, fmt.Errorf("unknown error policy: %s", s)
	}
}

// Option is a functional option for configuring the Converter.
type Option func(*Converter)

// WithLogger sets the logger for the converter.
// Default: no logging
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithErrorPolicy sets how failing records are handled.
// Default: ErrorPolicyAbort
func WithErrorPolicy(policy ErrorPolicy) Option {
	return func(c *Converter) {
		c.policy = policy
	}
}

// WithOpenOptions sets how sources are opened.
func WithOpenOptions(opts OpenOptions) Option {
	return func(c *Converter) {
		c.open = opts
	}
}

// WithRenderOptions sets escaping, blank handling and type hints.
func WithRenderOptions(opts model.RenderOptions) Option {
	return func(c *Converter) {
		c.render = opts
	}
}

// WithOutputOptions sets how rendered rows are joined.
func WithOutputOptions(opts OutputOptions) Option {
	return func(c *Converter) {
		c.output = opts
	}
}

// Stats counts the records handled by a run.
type Stats struct {
	Rendered int
	Skipped  int
}

// Converter renders files and writes the result.
type Converter struct {
	logger *zap.Logger
	policy ErrorPolicy
	open   OpenOptions
	render model.RenderOptions
	output OutputOptions
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		logger: zap.NewNop(),
		policy: ErrorPolicyAbort,
		open:   NewOpenOptions(),
		render: model.NewRenderOptions(),
		output: NewOutputOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run renders every record of the file at path into template and writes
// the rows to w. With ErrorPolicySkip, records failing with a
// *RowError are logged and counted instead of ending the run. Source errors
// and fields missing from the header always end the run before any row is
// written.
func (c *Converter) Run(ctx context.Context, path, template string, w io.Writer) (Stats, error) {
	var stats Stats

	r, err := model.NewRenderer(template, c.render)
	if err != nil {
		return stats, err
	}

	src, err := OpenContext(ctx, path, c.open)
	if err != nil {
		return stats, err
	}
	defer func() {
		_ = src.Close() // Ignore close error in cleanup
	}()
	c.logOpened(path, src)

	// A column missing from the header would fail every row.
	if err := r.CheckFields(src.FieldNames()); err != nil {
		return stats, err
	}

	n, err := WriteOutput(w, c.filter(Convert(ctx, src, r), path, &stats), c.output)
	stats.Rendered = n
	if err != nil {
		return stats, err
	}

	c.logger.Debug(logMsgRunFinished,
		zap.String(logFieldPath, path),
		zap.Int(logFieldRendered, stats.Rendered),
		zap.Int(logFieldSkipped, stats.Skipped))
	return stats, nil
}

// filter drops failing records when the policy allows it.
func (c *Converter) filter(seq iter.Seq2[string, error], path string, stats *Stats) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for out, err := range seq {
			var rowErr *RowError
			if err != nil && c.policy == ErrorPolicySkip && errors.As(err, &rowErr) {
				stats.Skipped++
				c.logger.Warn(logMsgRowSkipped,
					zap.String(logFieldPath, path),
					zap.Int(logFieldRow, rowErr.Row),
					zap.Error(rowErr.Err))
				continue
			}
			if !yield(out, err) {
				return
			}
		}
	}
}

func (c *Converter) logOpened(path string, src Source) {
	fields := []zap.Field{
		zap.String(logFieldPath, path),
		zap.Strings(logFieldFields, src.FieldNames()),
	}
	switch s := src.(type) {
	case *TableSource:
		fields = append(fields, zap.String(logFieldEncoding, s.Encoding()))
	case *SheetSource:
		fields = append(fields, zap.String(logFieldSheet, s.SheetName()))
	}
	c.logger.Debug(logMsgSourceOpened, fields...)
}
