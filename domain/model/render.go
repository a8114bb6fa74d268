package model

import "strings"

// DefaultIfNone is the text substituted for blank cells by default.
const DefaultIfNone = "null"

// Escaper transforms the text of a raw value before substitution.
type Escaper func(string) string

// EscapeSQL doubles every single quote so the value is safe inside a SQL
// string literal.
func EscapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeNone returns s unchanged.
func EscapeNone(s string) string {
	return s
}

// RenderOptions configure a Renderer.
type RenderOptions struct {
	// Escaper is applied to every referenced value. nil means EscapeNone.
	Escaper Escaper
	// IfNone replaces values that are empty after escaping. Empty disables it.
	IfNone string
	// Registry resolves type tags. nil means DefaultRegistry.
	Registry *Registry
}

// NewRenderOptions creates default render options.
func NewRenderOptions() RenderOptions {
	return RenderOptions{
		Escaper:  EscapeSQL,
		IfNone:   DefaultIfNone,
		Registry: DefaultRegistry(),
	}
}

// WithEscaper sets the escaper.
func (o RenderOptions) WithEscaper(e Escaper) RenderOptions {
	o.Escaper = e
	return o
}

// WithIfNone sets the blank value substitute.
func (o RenderOptions) WithIfNone(s string) RenderOptions {
	o.IfNone = s
	return o
}

// WithRegistry sets the type registry.
func (o RenderOptions) WithRegistry(r *Registry) RenderOptions {
	o.Registry = r
	return o
}

// Renderer renders records into a template.
// It holds no per-record state and is safe for concurrent use.
type Renderer struct {
	rules    RuleSet
	template *Template
	opts     RenderOptions
}

// NewRenderer extracts the rules of template and compiles it. Every type tag
// must be registered; an unknown tag fails here with *TypeConversionError
// rather than on the first record. Without opts, NewRenderOptions is used.
func NewRenderer(template string, opts ...RenderOptions) (*Renderer, error) {
	o := NewRenderOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Escaper == nil {
		o.Escaper = EscapeNone
	}
	if o.Registry == nil {
		o.Registry = DefaultRegistry()
	}

	rules, normalized := ExtractRules(template)
	if err := o.Registry.Validate(rules); err != nil {
		return nil, err
	}
	return &Renderer{
		rules:    rules,
		template: ParseTemplate(normalized),
		opts:     o,
	}, nil
}

// Rules returns a copy of the extracted rule set.
func (r *Renderer) Rules() RuleSet {
	out := make(RuleSet, len(r.rules))
	for k, v := range r.rules {
		out[k] = v
	}
	return out
}

// Template returns the compiled normalized template.
func (r *Renderer) Template() *Template {
	return r.template
}

// CheckFields reports the first referenced field missing from names.
func (r *Renderer) CheckFields(names []string) error {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for _, f := range r.template.fields {
		if !present[f] {
			return &MissingFieldError{Field: f}
		}
	}
	return nil
}

// Render substitutes record into the template.
//
// Presence of every referenced field is checked before any value is
// processed, so a failing record produces no partial output. Each value is
// formatted, escaped, replaced by IfNone when blank and then coerced if the
// field carries a type tag.
func (r *Renderer) Render(record Record) (string, error) {
	for _, f := range r.template.fields {
		if _, ok := record[f]; !ok {
			return "", &MissingFieldError{Field: f}
		}
	}

	values := make(map[string]string, len(r.template.fields))
	for _, f := range r.template.fields {
		v, err := r.value(f, record[f])
		if err != nil {
			return "", err
		}
		values[f] = v
	}
	return r.template.Execute(values), nil
}

func (r *Renderer) value(field string, raw any) (string, error) {
	text := r.opts.Escaper(FormatValue(raw))
	if text == "" && r.opts.IfNone != "" {
		text = r.opts.IfNone
	}

	tag, ok := r.rules[field]
	if !ok {
		return text, nil
	}
	coerced, err := r.opts.Registry.Coerce(field, tag, text)
	if err != nil {
		return "", err
	}
	return FormatValue(coerced), nil
}
