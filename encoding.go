package rowtmpl

import (
	"fmt"
	"strings"

	"github.com/axgle/mahonia"
	"github.com/saintfish/chardet"
)

// DefaultEncoding is used when detection is inconclusive.
const DefaultEncoding = "UTF-8"

// EncodingDetector decides the character set of legacy text data.
type EncodingDetector interface {
	// Detect returns a charset name for sample.
	Detect(sample []byte) (string, error)
}

// ChardetDetector sniffs the charset with statistical detection.
// Results below MinConfidence, or charsets the DBF decoder cannot handle,
// fall back to DefaultEncoding.
type ChardetDetector struct {
	MinConfidence int
}

// Detect implements EncodingDetector.
func (d ChardetDetector) Detect(sample []byte) (string, error) {
	if len(sample) == 0 {
		return DefaultEncoding, nil
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return DefaultEncoding, nil //nolint:nilerr // detection failure is not fatal
	}
	if result.Confidence < d.MinConfidence {
		return DefaultEncoding, nil
	}
	// The decoder works on single and multi byte charsets only.
	upper := strings.ToUpper(result.Charset)
	if strings.HasPrefix(upper, "UTF-16") || strings.HasPrefix(upper, "UTF-32") {
		return DefaultEncoding, nil
	}
	if !IsKnownEncoding(result.Charset) {
		return DefaultEncoding, nil
	}
	return result.Charset, nil
}

// FixedEncoding skips detection and always reports the named charset.
type FixedEncoding string

// Detect implements EncodingDetector.
func (e FixedEncoding) Detect([]byte) (string, error) {
	if !IsKnownEncoding(string(e)) {
		return "", fmt.Errorf("unknown encoding: %s", string(e))
	}
	return string(e), nil
}

// IsKnownEncoding reports whether name is a charset the decoder supports.
func IsKnownEncoding(name string) bool {
	return name != "" && mahonia.GetCharset(name) != nil
}
