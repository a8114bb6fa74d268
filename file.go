package rowtmpl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType represents supported source file types
type FileType int

const (
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX FileType = iota
	// FileTypeDBF represents dBase table file type
	FileTypeDBF
	// FileTypeCSV represents CSV file type
	FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeSQLite represents SQLite database file type
	FileTypeSQLite
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extDBF is the dBase file extension
	extDBF = ".dbf"
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extSQLite is the SQLite file extension
	extSQLite = ".sqlite"
	// extSQLite3 is an alternative SQLite file extension
	extSQLite3 = ".sqlite3"
	// extDB is the generic database file extension, read as SQLite
	extDB = ".db"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeDBF:
		return "dbf"
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeSQLite:
		return "sqlite"
	default:
		return "unsupported"
	}
}

// file represents a source file on disk
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile creates a new file
func newFile(path string) *file {
	return &file{
		path:        path,
		fileType:    DetectFileType(path),
		compression: detectCompressionType(path),
	}
}

// isCompressed returns true if file is compressed
func (f *file) isCompressed() bool {
	return f.compression != CompressionNone
}

// DetectFileType detects the source type from the file extension,
// ignoring a trailing compression extension.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(removeCompressionExtension(path)))
	switch ext {
	case extXLSX:
		return FileTypeXLSX
	case extDBF:
		return FileTypeDBF
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extParquet:
		return FileTypeParquet
	case extSQLite, extSQLite3, extDB:
		return FileTypeSQLite
	default:
		return FileTypeUnsupported
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(path string) bool {
	return DetectFileType(path) != FileTypeUnsupported
}

// removeCompressionExtension removes the compression extension from a file path if present
func removeCompressionExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// tableFromFilePath creates a table name from a file path
func tableFromFilePath(filePath string) string {
	fileName := filepath.Base(removeCompressionExtension(filePath))
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// openReader opens the file and returns a reader that handles decompression
func (f *file) openReader() (io.Reader, func() error, error) {
	fh, err := os.Open(f.path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, err
	}

	reader, cleanup, err := NewCompressionHandler(f.compression).CreateReader(fh)
	if err != nil {
		_ = fh.Close() // Ignore close error during error handling
		return nil, nil, err
	}
	return reader, func() error {
		cleanupErr := cleanup()
		if closeErr := fh.Close(); closeErr != nil && cleanupErr == nil {
			cleanupErr = closeErr
		}
		return cleanupErr
	}, nil
}

// readAll returns the decompressed contents of the file.
// Parsers that need random access to a compressed file work on this buffer.
func (f *file) readAll() ([]byte, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closer() // Ignore close error after a full read
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return buf.Bytes(), nil
}
