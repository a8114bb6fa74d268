package rowtmpl

import (
	"context"
	"fmt"

	"github.com/nao1215/rowtmpl/domain/model"
)

// Scaffold drafts an INSERT template for the file at path. Type hints are
// inferred from the first sample records, DefaultSampleSize when sample is
// not positive. An empty table name is derived from the file name.
func Scaffold(ctx context.Context, path, table string, sample int, opts OpenOptions) (string, error) {
	if sample <= 0 {
		sample = DefaultSampleSize
	}
	if table == "" {
		table = tableFromFilePath(path)
	}

	src, err := OpenContext(ctx, path, opts)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = src.Close() // Ignore close error in cleanup
	}()

	header := model.NewHeader(src.FieldNames())
	records := make([]model.Record, 0, sample)
	for record, err := range src.Records() {
		if err != nil {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr)
		}
		records = append(records, record)
		if len(records) >= sample {
			break
		}
	}

	return model.InsertTemplate(table, header, model.InferRules(header, records)), nil
}
