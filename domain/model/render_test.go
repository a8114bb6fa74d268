package model

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	noEscape := NewRenderOptions().WithEscaper(EscapeNone)

	tests := []struct {
		name     string
		template string
		opts     RenderOptions
		record   Record
		want     string
	}{
		{
			name:     "typed int truncates",
			template: "{NAME}, {COUNT:int}",
			opts:     noEscape,
			record:   Record{"NAME": "widget", "COUNT": "12.9"},
			want:     "widget, 12",
		},
		{
			name:     "untyped values verbatim",
			template: "'{A}' '{B}'",
			opts:     noEscape,
			record:   Record{"A": "x", "B": "y", "C": "unused"},
			want:     "'x' 'y'",
		},
		{
			name:     "sql escaping",
			template: "INSERT INTO p VALUES ('{NAME}');",
			opts:     NewRenderOptions(),
			record:   Record{"NAME": "O'Brien"},
			want:     "INSERT INTO p VALUES ('O''Brien');",
		},
		{
			name:     "blank becomes null",
			template: "({A}, '{B}')",
			opts:     NewRenderOptions(),
			record:   Record{"A": "", "B": nil},
			want:     "(null, 'null')",
		},
		{
			name:     "custom if none",
			template: "{A}",
			opts:     NewRenderOptions().WithIfNone("NULL"),
			record:   Record{"A": ""},
			want:     "NULL",
		},
		{
			name:     "empty if none keeps blank",
			template: "'{A}'",
			opts:     NewRenderOptions().WithIfNone(""),
			record:   Record{"A": ""},
			want:     "''",
		},
		{
			name:     "native values are formatted",
			template: "{I} {F} {B} {D}",
			opts:     NewRenderOptions(),
			record: Record{
				"I": int64(81439),
				"F": 2.5,
				"B": true,
				"D": time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			},
			want: "81439 2.5 true 2023-01-15",
		},
		{
			name:     "native float tagged int",
			template: "{ID:int}",
			opts:     NewRenderOptions(),
			record:   Record{"ID": 991010000014667.10},
			want:     "991010000014667",
		},
		{
			name:     "decimal keeps precision",
			template: "{P:decimal}",
			opts:     NewRenderOptions(),
			record:   Record{"P": "0.10"},
			want:     "0.1",
		},
		{
			name:     "repeated placeholder",
			template: "{A}{A}",
			opts:     NewRenderOptions(),
			record:   Record{"A": "x"},
			want:     "xx",
		},
		{
			name:     "exact key match only",
			template: "{name}",
			opts:     NewRenderOptions(),
			record:   Record{"name": "lower", "NAME": "upper"},
			want:     "lower",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewRenderer(tt.template, tt.opts)
			if err != nil {
				t.Fatalf("NewRenderer() error = %v", err)
			}
			got, err := r.Render(tt.record)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderer_MissingField(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer("{A} {B:int} {C}")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	// B holds an invalid int; the missing C must still be reported first
	// because presence is checked before any value is processed.
	got, err := r.Render(Record{"A": "x", "B": "oops"})
	if got != "" {
		t.Errorf("expected no partial output, got %q", got)
	}
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "C" {
		t.Errorf("expected missing field C, got %v", err)
	}

	// The first missing field in template order is reported.
	_, err = r.Render(Record{"B": "1"})
	if !errors.As(err, &missing) || missing.Field != "A" {
		t.Errorf("expected missing field A, got %v", err)
	}
}

func TestRenderer_TypeConversionError(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer("{COUNT:int}")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	tests := []struct {
		name  string
		value any
	}{
		{name: "text", value: "twelve"},
		{name: "blank cell", value: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := r.Render(Record{"COUNT": tt.value})
			if !errors.Is(err, ErrTypeConversion) {
				t.Fatalf("expected ErrTypeConversion, got %v", err)
			}
			var convErr *TypeConversionError
			if !errors.As(err, &convErr) || convErr.Field != "COUNT" {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestNewRenderer_UnknownTag(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer("{A:__import__('os')}")
	if !errors.Is(err, ErrUnknownTypeTag) {
		t.Fatalf("expected ErrUnknownTypeTag, got %v", err)
	}
	if !errors.Is(err, ErrTypeConversion) {
		t.Errorf("expected ErrTypeConversion, got %v", err)
	}
}

func TestNewRenderer_CustomRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Register("upper", ConverterFunc(func(v string) (any, error) {
		return strings.ToUpper(v), nil
	})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	r, err := NewRenderer("{A:upper}", NewRenderOptions().WithRegistry(reg))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	got, err := r.Render(Record{"A": "it's"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "IT''S" {
		t.Errorf("Render() = %q", got)
	}

	if _, err := NewRenderer("{A:upper}"); !errors.Is(err, ErrUnknownTypeTag) {
		t.Errorf("default registry accepted custom tag: %v", err)
	}
}

func TestNewRenderer_ZeroOptions(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer("'{A}' {B}", RenderOptions{})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	got, err := r.Render(Record{"A": "O'Brien", "B": ""})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "'O'Brien' " {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderer_Accessors(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer("{ID:int}, '{NAME}'")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	rules := r.Rules()
	if !reflect.DeepEqual(rules, RuleSet{"ID": "int"}) {
		t.Errorf("Rules() = %v", rules)
	}
	rules["X"] = "float"
	if _, ok := r.Rules()["X"]; ok {
		t.Error("Rules() exposed internal state")
	}

	if r.Template().String() != "{ID}, '{NAME}'" {
		t.Errorf("Template() = %q", r.Template().String())
	}

	if err := r.CheckFields([]string{"NAME", "ID", "EXTRA"}); err != nil {
		t.Errorf("CheckFields() error = %v", err)
	}
	err = r.CheckFields([]string{"NAME"})
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "ID" {
		t.Errorf("CheckFields() error = %v", err)
	}
}

func TestRenderer_Concurrent(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer("{N:int}")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got, err := r.Render(Record{"N": "3.7"}); err != nil || got != "3" {
					t.Errorf("Render() = %q, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
