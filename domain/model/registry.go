package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	errEmptyTag     = errors.New("type tag cannot be empty")
	errTagExists    = errors.New("type tag already registered")
	errNotANumber   = errors.New("not a finite number")
	errIntOverflow  = errors.New("value out of int64 range")
	errNilConverter = errors.New("converter cannot be nil")
)

// Converter turns the escaped text of a field into a typed value.
type Converter interface {
	Convert(value string) (any, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(value string) (any, error)

// Convert calls f(value).
func (f ConverterFunc) Convert(value string) (any, error) {
	return f(value)
}

// Registry maps type tags to converters. Only converters registered
// here can be named by a template; tags are never evaluated.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry returns a registry holding the built-in tags.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter, len(builtinTags))}
	r.converters[TypeTagNone.String()] = ConverterFunc(convertIdentity)
	r.converters[TypeTagInt.String()] = ConverterFunc(convertInt)
	r.converters[TypeTagFloat.String()] = ConverterFunc(convertFloat)
	r.converters[TypeTagDecimal.String()] = ConverterFunc(convertDecimal)
	r.converters[TypeTagStr.String()] = ConverterFunc(convertIdentity)
	r.converters[TypeTagBool.String()] = ConverterFunc(convertBool)
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry of built-in tags.
// Register custom tags on a registry from NewRegistry instead.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a converter for tag.
func (r *Registry) Register(tag string, c Converter) error {
	if tag == "" {
		return errEmptyTag
	}
	if c == nil {
		return errNilConverter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.converters[tag]; exists {
		return fmt.Errorf("%w: %s", errTagExists, tag)
	}
	r.converters[tag] = c
	return nil
}

// Lookup returns the converter for tag.
func (r *Registry) Lookup(tag string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[tag]
	return c, ok
}

// Tags returns the registered tags in sorted order. The empty tag of
// untyped placeholders is left out.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.converters))
	for tag := range r.converters {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// unknownTag builds the cause reported for a tag with no converter.
func (r *Registry) unknownTag() error {
	return fmt.Errorf("%w, known tags: %s", ErrUnknownTypeTag, strings.Join(r.Tags(), ", "))
}

// Validate checks that every tag in rules is registered.
func (r *Registry) Validate(rules RuleSet) error {
	for _, field := range rules.Fields() {
		tag := rules[field]
		if _, ok := r.Lookup(tag); !ok {
			return &TypeConversionError{Field: field, Tag: tag, Err: r.unknownTag()}
		}
	}
	return nil
}

// Coerce converts value of field according to tag.
func (r *Registry) Coerce(field, tag, value string) (any, error) {
	c, ok := r.Lookup(tag)
	if !ok {
		return nil, &TypeConversionError{Field: field, Tag: tag, Value: value, Err: r.unknownTag()}
	}
	v, err := c.Convert(value)
	if err != nil {
		return nil, &TypeConversionError{Field: field, Tag: tag, Value: value, Err: err}
	}
	return v, nil
}

func convertIdentity(value string) (any, error) {
	return value, nil
}

// convertInt goes through float64 so that decimal-formatted integers such as
// "991010000014667.10" are accepted; the fraction is truncated, not rounded.
func convertInt(value string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotANumber
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, errIntOverflow
	}
	return int64(f), nil
}

func convertFloat(value string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

func convertDecimal(value string) (any, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}

func convertBool(value string) (any, error) {
	return strconv.ParseBool(strings.TrimSpace(value))
}
