package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// DBF date fields
	{
		regexp.MustCompile(`^\d{8}$`),
		[]string{"20060102"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, dp := range datetimePatterns {
		if dp.pattern.MatchString(value) {
			for _, format := range dp.formats {
				if _, err := time.Parse(format, value); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// isBoolLiteral accepts the spellings a sheet or DBF logical field produces.
func isBoolLiteral(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "t", "f":
		return true
	default:
		return false
	}
}

// InferTypeTag infers the type tag that fits every non-blank value.
// Columns that look like dates or text get TypeTagNone so they are quoted.
func InferTypeTag(values []string) TypeTag {
	hasFloat := false
	hasInteger := false
	hasBool := false
	seen := false

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		seen = true

		// Dates such as 20230115 would otherwise pass as integers.
		if len(value) == 8 && isDatetime(value) {
			return TypeTagNone
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasFloat = true
			continue
		}
		if isBoolLiteral(value) {
			hasBool = true
			continue
		}
		// Any text or datetime makes the whole column untyped.
		return TypeTagNone
	}

	switch {
	case !seen:
		return TypeTagNone
	case hasBool && (hasInteger || hasFloat):
		return TypeTagNone
	case hasBool:
		return TypeTagBool
	case hasFloat:
		return TypeTagFloat
	case hasInteger:
		return TypeTagInt
	default:
		return TypeTagNone
	}
}

// InferRules infers a rule set from sample records.
// Fields inferred as TypeTagNone are left out, matching what ExtractRules
// returns for untyped placeholders. A typed field with a blank sample maps
// to TypeTagNone's empty tag instead: a blank renders as the IfNone text,
// which its type could not parse.
func InferRules(header Header, records []Record) RuleSet {
	rules := RuleSet{}
	for _, name := range header {
		if !isPlaceholderName(name) {
			continue
		}
		values := make([]string, 0, len(records))
		blank := false
		for _, r := range records {
			v, ok := r[name]
			if !ok {
				continue
			}
			text := FormatValue(v)
			if strings.TrimSpace(text) == "" {
				blank = true
			}
			values = append(values, text)
		}
		tag := InferTypeTag(values)
		switch {
		case tag == TypeTagNone:
			// quoted text
		case blank:
			rules[name] = TypeTagNone.String()
		default:
			rules[name] = tag.String()
		}
	}
	return rules
}

// InsertTemplate drafts an INSERT statement template for table.
// Typed fields are written bare with their tag, fields mapped to the empty
// tag bare without one, and every other field inside single quotes.
// Columns whose names cannot appear in a placeholder are skipped.
func InsertTemplate(table string, header Header, rules RuleSet) string {
	columns := make([]string, 0, len(header))
	values := make([]string, 0, len(header))
	for _, name := range header {
		if !isPlaceholderName(name) {
			continue
		}
		columns = append(columns, quoteIdentifier(name))
		tag, ok := rules[name]
		switch {
		case !ok || tag == TypeTagStr.String():
			values = append(values, "'{"+name+"}'")
		case tag == TypeTagNone.String():
			values = append(values, "{"+name+"}")
		default:
			values = append(values, "{"+name+":"+tag+"}")
		}
	}
	return "INSERT INTO " + quoteIdentifier(table) +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(values, ", ") + ");"
}

// isPlaceholderName reports whether name can be written as {name}.
func isPlaceholderName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, ":{}")
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
