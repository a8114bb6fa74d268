// Package model provides domain model for rowtmpl
package model

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Header is the ordered list of field names of a source.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Validate checks for duplicate field names.
// Names are compared after trimming surrounding whitespace. Blank names are
// allowed to repeat since no placeholder can reference them.
func (h Header) Validate() error {
	seen := make(map[string]bool, len(h))
	for _, name := range h {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if seen[trimmed] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, trimmed)
		}
		seen[trimmed] = true
	}
	return nil
}

// Record is one row of a source keyed by field name.
type Record map[string]any

// NewRecord zips header and values into a Record.
// Values missing at the end of a short row are filled with "".
// Values beyond the header are dropped.
func NewRecord(header Header, values []any) Record {
	r := make(Record, len(header))
	for i, name := range header {
		if i < len(values) {
			r[name] = values[i]
		} else {
			r[name] = ""
		}
	}
	return r
}

// NewStringRecord is NewRecord for sources producing text cells.
func NewStringRecord(header Header, values []string) Record {
	r := make(Record, len(header))
	for i, name := range header {
		if i < len(values) {
			r[name] = values[i]
		} else {
			r[name] = ""
		}
	}
	return r
}

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// FormatValue returns the text form of a raw or coerced value.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case *big.Int:
		return val.String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(dateLayout)
		}
		return val.Format(dateTimeLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
