package rowtmpl

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/rowtmpl/domain/model"
)

const productsTemplate = "INSERT INTO products VALUES ({ID:int}, '{NAME}', {PRICE:float});"

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("workbook", func(t *testing.T) {
		t.Parallel()

		path := writeProductsWorkbook(t, t.TempDir())
		var got []string
		for out, err := range ConvertFile(context.Background(), path, productsTemplate, NewConvertOptions()) {
			if err != nil {
				var rowErr *RowError
				require.ErrorAs(t, err, &rowErr)
				assert.Equal(t, 3, rowErr.Row)
				assert.ErrorIs(t, err, ErrTypeConversion, "blank PRICE becomes null, which is not a float")
				continue
			}
			got = append(got, out)
		}
		assert.Equal(t, []string{
			"INSERT INTO products VALUES (1, 'widget', 12.9);",
			"INSERT INTO products VALUES (2, 'O''Brien', 3);",
		}, got)
	})

	t.Run("parquet with nulls", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "products.parquet")
		writeProductsParquet(t, path)

		var got []string
		for out, err := range ConvertFile(context.Background(), path, productsTemplate, NewConvertOptions()) {
			require.NoError(t, err)
			got = append(got, out)
		}
		assert.Equal(t, []string{
			"INSERT INTO products VALUES (1, 'apple', 1.5);",
			"INSERT INTO products VALUES (2, 'null', 2);",
			"INSERT INTO products VALUES (3, 'it''s', 12.9);",
		}, got)
	})

	t.Run("dbf", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "fruit.dbf")
		writeDBF(t, path, "UTF-8", fruitFields, fruitRows, 2)

		var got []string
		for out, err := range ConvertFile(context.Background(), path, "{NAME}={ID:int}", NewConvertOptions()) {
			require.NoError(t, err)
			got = append(got, out)
		}
		assert.Equal(t, []string{"apple=11", "pear=23"}, got)
	})

	t.Run("invalid template fails before the file is read", func(t *testing.T) {
		t.Parallel()

		var errs []error
		for _, err := range ConvertFile(context.Background(), "/does/not/exist.csv", "{A:money}", NewConvertOptions()) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], model.ErrUnknownTypeTag)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var errs []error
		for _, err := range ConvertFile(context.Background(), filepath.Join(t.TempDir(), "x.csv"), "{A}", NewConvertOptions()) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrSourceOpen)
	})

	t.Run("missing field is reported per row", func(t *testing.T) {
		t.Parallel()

		path := writeTextFile(t, t.TempDir(), "a.csv", "A\n1\n2\n")
		var errs []error
		for _, err := range ConvertFile(context.Background(), path, "{A} {B}", NewConvertOptions()) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 2)
		for i, err := range errs {
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, i+1, rowErr.Row)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, "B", missing.Field)
		}
	})

	t.Run("custom render options", func(t *testing.T) {
		t.Parallel()

		path := writeTextFile(t, t.TempDir(), "a.csv", "A,B\nit's,\n")
		opts := NewConvertOptions().WithRenderOptions(
			model.NewRenderOptions().WithEscaper(model.EscapeNone).WithIfNone("NULL"))

		var got []string
		for out, err := range ConvertFile(context.Background(), path, "{A}|{B}", opts) {
			require.NoError(t, err)
			got = append(got, out)
		}
		assert.Equal(t, []string{"it's|NULL"}, got)
	})

	t.Run("break closes the source", func(t *testing.T) {
		t.Parallel()

		path := writeTextFile(t, t.TempDir(), "a.csv", "A\n1\n2\n3\n")
		n := 0
		for out, err := range ConvertFile(context.Background(), path, "{A}", NewConvertOptions()) {
			require.NoError(t, err)
			assert.Equal(t, "1", out)
			n++
			break
		}
		assert.Equal(t, 1, n)
	})
}

func TestConvert_Cancelled(t *testing.T) {
	t.Parallel()

	path := writeTextFile(t, t.TempDir(), "a.csv", "A\n1\n2\n")
	src, err := Open(path, NewOpenOptions())
	require.NoError(t, err)
	defer src.Close()

	r, err := model.NewRenderer("{A}")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range Convert(ctx, src, r) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrContextCancelled)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestConvert_SourceErrorStops(t *testing.T) {
	t.Parallel()

	path := writeTextFile(t, t.TempDir(), "a.csv", "A\n1\n\"broken\n")
	src, err := Open(path, NewOpenOptions())
	require.NoError(t, err)
	defer src.Close()

	r, err := model.NewRenderer("{A}")
	require.NoError(t, err)

	var outs []string
	var errs []error
	for out, err := range Convert(context.Background(), src, r) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outs = append(outs, out)
	}
	assert.Equal(t, []string{"1"}, outs)
	require.Len(t, errs, 1)

	var rowErr *RowError
	assert.False(t, errors.As(errs[0], &rowErr), "source errors are not row errors")
}

func TestRowError(t *testing.T) {
	t.Parallel()

	cause := &model.MissingFieldError{Field: "X"}
	err := &RowError{Row: 4, Err: cause}

	assert.Equal(t, "row 4: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, ErrMissingField)
}
