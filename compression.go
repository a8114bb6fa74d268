package rowtmpl

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

func nopClose() error { return nil }

// codec describes how one compression format is read and written.
// A nil writer means the format is read-only.
type codec struct {
	name    string
	ext     string
	aliases []string
	reader  func(io.Reader) (io.Reader, func() error, error)
	writer  func(io.Writer) (io.Writer, func() error, error)
}

// codecs lists the compressed formats in suffix detection order.
var codecs = []struct {
	typ CompressionType
	codec
}{
	{CompressionGZ, codec{
		name:    "gz",
		ext:     extGZ,
		aliases: []string{"gzip"},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
			}
			return gr, gr.Close, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			gw := gzip.NewWriter(w)
			return gw, gw.Close, nil
		},
	}},
	{CompressionBZ2, codec{
		name:    "bz2",
		ext:     extBZ2,
		aliases: []string{"bzip2"},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), nopClose, nil
		},
	}},
	{CompressionXZ, codec{
		name: "xz",
		ext:  extXZ,
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
			}
			return xr, nopClose, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			xw, err := xz.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
			}
			return xw, xw.Close, nil
		},
	}},
	{CompressionZSTD, codec{
		name:    "zstd",
		ext:     extZSTD,
		aliases: []string{"zst"},
		reader: func(r io.Reader) (io.Reader, func() error, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
			}
			return dec, func() error {
				dec.Close()
				return nil
			}, nil
		},
		writer: func(w io.Writer) (io.Writer, func() error, error) {
			enc, err := zstd.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
			}
			return enc, enc.Close, nil
		},
	}},
}

func lookupCodec(c CompressionType) (codec, bool) {
	for _, entry := range codecs {
		if entry.typ == c {
			return entry.codec, true
		}
	}
	return codec{}, false
}

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	if cd, ok := lookupCodec(c); ok {
		return cd.name
	}
	return "none"
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	if cd, ok := lookupCodec(c); ok {
		return cd.ext
	}
	return ""
}

// ParseCompressionType resolves a compression name such as "gz" or "zstd".
// A leading dot is ignored, so extensions are accepted too.
func ParseCompressionType(s string) (CompressionType, error) {
	name := strings.ToLower(strings.TrimPrefix(s, "."))
	if name == "" || name == "none" {
		return CompressionNone, nil
	}
	for _, entry := range codecs {
		if entry.name == name || entry.ext == "."+name {
			return entry.typ, nil
		}
		for _, alias := range entry.aliases {
			if alias == name {
				return entry.typ, nil
			}
		}
	}
	return CompressionNone, fmt.Errorf("unknown compression type: %s", s)
}

// detectCompressionType detects the compression type from a file path
func detectCompressionType(path string) CompressionType {
	path = strings.ToLower(path)
	for _, entry := range codecs {
		if strings.HasSuffix(path, entry.ext) {
			return entry.typ
		}
	}
	return CompressionNone
}

// CompressionHandler wraps readers and writers for one compression type.
type CompressionHandler struct {
	compression CompressionType
}

// NewCompressionHandler creates a new compression handler for the given compression type
func NewCompressionHandler(compression CompressionType) *CompressionHandler {
	return &CompressionHandler{compression: compression}
}

// CreateReader wraps reader with a decompressor. The returned function
// releases the decompressor and must be called when reading is done.
func (h *CompressionHandler) CreateReader(reader io.Reader) (io.Reader, func() error, error) {
	if h.compression == CompressionNone {
		return reader, nopClose, nil
	}
	cd, ok := lookupCodec(h.compression)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported compression type for reading: %v", h.compression)
	}
	return cd.reader(reader)
}

// CreateWriter wraps writer with a compressor. The returned function
// flushes the compressed stream; it does not close writer.
func (h *CompressionHandler) CreateWriter(writer io.Writer) (io.Writer, func() error, error) {
	if h.compression == CompressionNone {
		return writer, nopClose, nil
	}
	cd, ok := lookupCodec(h.compression)
	if !ok || cd.writer == nil {
		return nil, nil, fmt.Errorf("%s compression is not supported for writing", h.compression)
	}
	return cd.writer(writer)
}

// Extension returns the file extension for this compression type
func (h *CompressionHandler) Extension() string {
	return h.compression.Extension()
}
