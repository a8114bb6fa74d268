package model

import (
	"reflect"
	"testing"
)

func TestExtractRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		template       string
		wantRules      RuleSet
		wantNormalized string
	}{
		{
			name:           "typed and untyped placeholders",
			template:       "INSERT INTO t VALUES ({ID:int}, '{NAME}');",
			wantRules:      RuleSet{"ID": "int"},
			wantNormalized: "INSERT INTO t VALUES ({ID}, '{NAME}');",
		},
		{
			name:           "untyped only",
			template:       "{A} and {B}",
			wantRules:      RuleSet{},
			wantNormalized: "{A} and {B}",
		},
		{
			name:           "empty tag is untyped",
			template:       "{A:}",
			wantRules:      RuleSet{},
			wantNormalized: "{A}",
		},
		{
			name:           "last occurrence wins",
			template:       "{A:int} {A:float}",
			wantRules:      RuleSet{"A": "float"},
			wantNormalized: "{A} {A}",
		},
		{
			name:           "later untyped drops type",
			template:       "{A:int} {A}",
			wantRules:      RuleSet{},
			wantNormalized: "{A} {A}",
		},
		{
			name:           "names with spaces",
			template:       "{first name:str}",
			wantRules:      RuleSet{"first name": "str"},
			wantNormalized: "{first name}",
		},
		{
			name:           "no placeholders",
			template:       "SELECT 1;",
			wantRules:      RuleSet{},
			wantNormalized: "SELECT 1;",
		},
		{
			name:           "empty braces stay literal",
			template:       "{} {A}",
			wantRules:      RuleSet{},
			wantNormalized: "{} {A}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rules, normalized := ExtractRules(tt.template)
			if !reflect.DeepEqual(rules, tt.wantRules) {
				t.Errorf("rules = %v, want %v", rules, tt.wantRules)
			}
			if normalized != tt.wantNormalized {
				t.Errorf("normalized = %q, want %q", normalized, tt.wantNormalized)
			}
		})
	}
}

func TestExtractRules_Idempotent(t *testing.T) {
	t.Parallel()

	templates := []string{
		"INSERT INTO t VALUES ({ID:int}, '{NAME}', {PRICE:decimal});",
		"{A:int}{B}{C:}",
		"plain text",
	}
	for _, tmpl := range templates {
		_, once := ExtractRules(tmpl)
		rules, twice := ExtractRules(once)
		if once != twice {
			t.Errorf("normalization not idempotent: %q -> %q", once, twice)
		}
		if len(rules) != 0 {
			t.Errorf("normalized template still has rules: %v", rules)
		}
	}
}

func TestRuleSet_Fields(t *testing.T) {
	t.Parallel()

	rules := RuleSet{"b": "int", "a": "float"}
	if got := rules.Fields(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Fields() = %v", got)
	}
	if tag, ok := rules.Tag("b"); !ok || tag != "int" {
		t.Errorf("Tag(b) = %q, %v", tag, ok)
	}
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	t.Run("fields in first-seen order", func(t *testing.T) {
		t.Parallel()

		tmpl := ParseTemplate("{B}-{A}-{B}")
		if got := tmpl.Fields(); !reflect.DeepEqual(got, []string{"B", "A"}) {
			t.Errorf("Fields() = %v", got)
		}
		if tmpl.String() != "{B}-{A}-{B}" {
			t.Errorf("String() = %q", tmpl.String())
		}
	})

	t.Run("values are not rescanned", func(t *testing.T) {
		t.Parallel()

		tmpl := ParseTemplate("{A} {B}")
		got := tmpl.Execute(map[string]string{"A": "{B}", "B": "x"})
		if got != "{B} x" {
			t.Errorf("Execute() = %q", got)
		}
	})

	t.Run("stray braces are literal", func(t *testing.T) {
		t.Parallel()

		tmpl := ParseTemplate("json: {} {A} }")
		if got := tmpl.Execute(map[string]string{"A": "1"}); got != "json: {} 1 }" {
			t.Errorf("Execute() = %q", got)
		}
	})

	t.Run("missing value keeps placeholder", func(t *testing.T) {
		t.Parallel()

		tmpl := ParseTemplate("{A}{B}")
		if got := tmpl.Execute(map[string]string{"A": "1"}); got != "1{B}" {
			t.Errorf("Execute() = %q", got)
		}
	})
}
