package rowtmpl

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	godbf "github.com/LindsayBradford/go-dbf"
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/rowtmpl/domain/model"
)

// writeTextFile writes content to dir/name and returns the path.
func writeTextFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// gzipFile compresses src into src+".gz" and returns the new path.
func gzipFile(t *testing.T, src string) string {
	t.Helper()

	data, err := os.ReadFile(src) //nolint:gosec // test fixture
	require.NoError(t, err)

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err = gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	dst := src + ".gz"
	require.NoError(t, os.WriteFile(dst, buf.Bytes(), 0600))
	return dst
}

// writeWorkbook saves a workbook with one sheet per entry of sheets, in
// order. Each sheet is a list of rows.
func writeWorkbook(t *testing.T, path string, names []string, sheets ...[][]any) {
	t.Helper()
	require.Len(t, sheets, len(names))

	book := excelize.NewFile()
	defer book.Close()

	for i, name := range names {
		if i == 0 {
			require.NoError(t, book.SetSheetName("Sheet1", name))
		} else {
			_, err := book.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[i] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, book.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, book.SaveAs(path))
}

// dbfField describes a column of a test table.
type dbfField struct {
	name     string
	numeric  bool
	length   byte
	decimals byte
}

// writeDBF saves a DBF table encoded with encoding. Rows listed in deleted
// are flagged as deleted.
func writeDBF(t *testing.T, path, encoding string, fields []dbfField, rows [][]string, deleted ...int) {
	t.Helper()

	table := godbf.New(encoding)
	for _, f := range fields {
		if f.numeric {
			require.NoError(t, table.AddNumberField(f.name, f.length, f.decimals))
		} else {
			require.NoError(t, table.AddTextField(f.name, f.length))
		}
	}
	for _, row := range rows {
		n, err := table.AddNewRecord()
		require.NoError(t, err)
		for i, v := range row {
			require.NoError(t, table.SetFieldValue(n, i, v))
		}
	}

	tmp := path + ".tmp"
	require.NoError(t, godbf.SaveToFile(table, tmp))
	data, err := os.ReadFile(tmp) //nolint:gosec // test fixture
	require.NoError(t, err)
	require.NoError(t, os.Remove(tmp))

	headerLen := int(binary.LittleEndian.Uint16(data[8:]))
	recordLen := int(binary.LittleEndian.Uint16(data[10:]))
	for _, row := range deleted {
		data[headerLen+row*recordLen] = '*'
	}
	// Tables built from scratch are saved without the end of file marker.
	data = append(data, 0x1A)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

// writeProductsParquet saves three products; the NAME of the second is null.
func writeProductsParquet(t *testing.T, path string) {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "ID", Type: arrow.PrimitiveTypes.Int64},
		{Name: "NAME", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "PRICE", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"apple", "", "it's"}, []bool{true, false, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2, 12.9}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(schema, &buf, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

// writeSQLite creates a database at path and runs stmts against it.
func writeSQLite(t *testing.T, path string, stmts ...string) {
	t.Helper()

	db, err := sql.Open(sqliteDriverName, path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

// drain collects every record of src as text, failing on the first error.
func drain(t *testing.T, src Source) [][]string {
	t.Helper()

	var out [][]string
	names := src.FieldNames()
	for record, err := range src.Records() {
		require.NoError(t, err)
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = model.FormatValue(record[name])
		}
		out = append(out, row)
	}
	return out
}
