package model

// TypeTag is a built-in type hint usable after ':' in a placeholder.
type TypeTag int

const (
	// TypeTagNone passes the escaped value through unchanged
	TypeTagNone TypeTag = iota
	// TypeTagInt parses as a float and truncates toward zero
	TypeTagInt
	// TypeTagFloat parses as a 64-bit float
	TypeTagFloat
	// TypeTagDecimal parses as an arbitrary precision decimal
	TypeTagDecimal
	// TypeTagStr keeps the value as text
	TypeTagStr
	// TypeTagBool parses true/false, 1/0, t/f
	TypeTagBool
)

const (
	tagNone    = ""
	tagInt     = "int"
	tagFloat   = "float"
	tagDecimal = "decimal"
	tagStr     = "str"
	tagBool    = "bool"
)

// builtinTags lists every TypeTag in declaration order.
var builtinTags = []TypeTag{
	TypeTagNone,
	TypeTagInt,
	TypeTagFloat,
	TypeTagDecimal,
	TypeTagStr,
	TypeTagBool,
}

// String returns the tag as written in templates.
func (t TypeTag) String() string {
	switch t {
	case TypeTagNone:
		return tagNone
	case TypeTagInt:
		return tagInt
	case TypeTagFloat:
		return tagFloat
	case TypeTagDecimal:
		return tagDecimal
	case TypeTagStr:
		return tagStr
	case TypeTagBool:
		return tagBool
	default:
		return tagNone
	}
}

// ParseTypeTag resolves the text of a built-in tag.
func ParseTypeTag(s string) (TypeTag, bool) {
	for _, t := range builtinTags {
		if t.String() == s {
			return t, true
		}
	}
	return TypeTagNone, false
}
