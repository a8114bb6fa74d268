package rowtmpl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0750))

	csvPath := writeTextFile(t, dir, "b.csv", "A\n1\n")
	gzipFile(t, csvPath)
	writeTextFile(t, dir, "notes.txt", "ignored")
	tsvGz := gzipFile(t, writeTextFile(t, sub, "c.tsv", "A\n1\n"))
	require.NoError(t, os.Remove(filepath.Join(sub, "c.tsv")))
	dbfPath := filepath.Join(sub, "a.dbf")
	writeDBF(t, dbfPath, "UTF-8", fruitFields, fruitRows)

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		got, err := CollectFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{csvPath, dbfPath, tsvGz}, got)
	})

	t.Run("overlapping paths are listed once", func(t *testing.T) {
		t.Parallel()

		got, err := CollectFiles(dbfPath, sub)
		require.NoError(t, err)
		assert.Equal(t, []string{dbfPath, tsvGz}, got)
	})

	t.Run("unsupported file named explicitly", func(t *testing.T) {
		t.Parallel()

		_, err := CollectFiles(filepath.Join(dir, "notes.txt"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		_, err := CollectFiles(filepath.Join(dir, "absent.csv"))
		assert.ErrorIs(t, err, ErrSourceOpen)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := CollectFiles(" ")
		assert.Error(t, err)
	})
}

func TestDeduplicateCompressedFiles(t *testing.T) {
	t.Parallel()

	got := deduplicateCompressedFiles([]string{"z.csv.gz", "a.csv", "a.csv.gz", "b.tsv.zst"})
	assert.Equal(t, []string{"a.csv", "b.tsv.zst", "z.csv.gz"}, got)
}
