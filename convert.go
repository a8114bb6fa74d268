package rowtmpl

import (
	"context"
	"fmt"
	"iter"

	"github.com/nao1215/rowtmpl/domain/model"
)

// ConvertOptions configures ConvertFile.
type ConvertOptions struct {
	// Open configures how the source is opened
	Open OpenOptions
	// Render configures escaping, blank handling and type hints
	Render model.RenderOptions
}

// NewConvertOptions creates default convert options.
func NewConvertOptions() ConvertOptions {
	return ConvertOptions{
		Open:   NewOpenOptions(),
		Render: model.NewRenderOptions(),
	}
}

// WithOpenOptions sets the source options.
func (o ConvertOptions) WithOpenOptions(open OpenOptions) ConvertOptions {
	o.Open = open
	return o
}

// WithRenderOptions sets the render options.
func (o ConvertOptions) WithRenderOptions(render model.RenderOptions) ConvertOptions {
	o.Render = render
	return o
}

// RowError reports a record that could not be rendered.
// Row is the 1-based position of the record among the data rows.
type RowError struct {
	Row int
	Err error
}

// Error implements error.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RowError) Unwrap() error {
	return e.Err
}

// Convert renders every record of src with r.
//
// A record that fails to render yields a *RowError and iteration goes on
// if the caller keeps ranging. An error from the source or a cancelled ctx
// is yielded once and ends the sequence. Convert does not close src.
func Convert(ctx context.Context, src Source, r *model.Renderer) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		row := 0
		for record, err := range src.Records() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield("", fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr))
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			row++

			out, err := r.Render(record)
			if err != nil {
				if !yield("", &RowError{Row: row, Err: err}) {
					return
				}
				continue
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// ConvertFile renders every record of the file at path into template.
//
// The template is checked before the file is touched. The file is opened
// when iteration starts and closed when it ends, including on break.
func ConvertFile(ctx context.Context, path, template string, opts ConvertOptions) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r, err := model.NewRenderer(template, opts.Render)
		if err != nil {
			yield("", err)
			return
		}

		src, err := OpenContext(ctx, path, opts.Open)
		if err != nil {
			yield("", err)
			return
		}
		defer func() {
			_ = src.Close() // Ignore close error in cleanup
		}()

		for out, err := range Convert(ctx, src, r) {
			if !yield(out, err) {
				return
			}
		}
	}
}
