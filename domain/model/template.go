package model

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// placeholderPattern matches {name}, {name:type} and the degenerate {name:}.
	placeholderPattern = regexp.MustCompile(`\{([^:}]+):?([^}]+)?\}`)
	// fieldPattern matches placeholders of a normalized template.
	fieldPattern = regexp.MustCompile(`\{([^:}]+)\}`)
)

// RuleSet maps a field name to the type tag declared for it in a template.
// Only typed placeholders appear in a RuleSet.
type RuleSet map[string]string

// Fields returns the field names of the rule set in sorted order.
func (r RuleSet) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Tag returns the type tag for field and whether one was declared.
func (r RuleSet) Tag(field string) (string, bool) {
	tag, ok := r[field]
	return tag, ok
}

// ExtractRules scans template left to right, collecting the type tag of every
// typed placeholder and rewriting each placeholder to its plain {name} form.
//
// When the same field appears more than once the last occurrence decides:
// a later {name} drops a type declared by an earlier {name:type}.
// ExtractRules is pure and applying it to its own normalized output yields
// an empty RuleSet and the same text.
func ExtractRules(template string) (RuleSet, string) {
	rules := RuleSet{}
	var b strings.Builder
	b.Grow(len(template))

	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		name := template[m[2]:m[3]]
		tag := ""
		if m[4] >= 0 {
			tag = template[m[4]:m[5]]
		}
		if tag == "" {
			delete(rules, name)
		} else {
			rules[name] = tag
		}

		b.WriteString(template[last:m[0]])
		b.WriteByte('{')
		b.WriteString(name)
		b.WriteByte('}')
		last = m[1]
	}
	b.WriteString(template[last:])
	return rules, b.String()
}

type segment struct {
	text  string
	field bool
}

// Template is a normalized template compiled into literal and field segments.
type Template struct {
	text     string
	segments []segment
	fields   []string
}

// ParseTemplate compiles a normalized template. Text that is not a {name}
// placeholder, stray braces included, is kept as a literal.
func ParseTemplate(normalized string) *Template {
	t := &Template{text: normalized}
	seen := make(map[string]bool)

	last := 0
	for _, m := range fieldPattern.FindAllStringSubmatchIndex(normalized, -1) {
		if m[0] > last {
			t.segments = append(t.segments, segment{text: normalized[last:m[0]]})
		}
		name := normalized[m[2]:m[3]]
		t.segments = append(t.segments, segment{text: name, field: true})
		if !seen[name] {
			seen[name] = true
			t.fields = append(t.fields, name)
		}
		last = m[1]
	}
	if last < len(normalized) {
		t.segments = append(t.segments, segment{text: normalized[last:]})
	}
	return t
}

// String returns the normalized template text.
func (t *Template) String() string {
	return t.text
}

// Fields returns the referenced field names in first-seen order.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Execute substitutes values into the template in a single pass.
// Substituted values are never scanned for placeholders. A field without an
// entry in values is written back as its {name} placeholder.
func (t *Template) Execute(values map[string]string) string {
	var b strings.Builder
	b.Grow(len(t.text))
	for _, s := range t.segments {
		if !s.field {
			b.WriteString(s.text)
			continue
		}
		v, ok := values[s.text]
		if !ok {
			b.WriteByte('{')
			b.WriteString(s.text)
			b.WriteByte('}')
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}
