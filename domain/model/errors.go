// Package model provides domain model for rowtmpl
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumnName is returned when a source contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrTypeConversion indicates a value could not be coerced to its declared type
	ErrTypeConversion = errors.New("type conversion failed")

	// ErrMissingField indicates a template references a field absent from the record
	ErrMissingField = errors.New("missing field")

	// ErrUnknownTypeTag indicates a type tag with no registered converter
	ErrUnknownTypeTag = errors.New("unknown type tag")
)

// TypeConversionError describes a field whose value could not be coerced.
type TypeConversionError struct {
	Field string
	Tag   string
	Value string
	Err   error
}

// Error implements error.
func (e *TypeConversionError) Error() string {
	if e.Err != nil && errors.Is(e.Err, ErrUnknownTypeTag) {
		return fmt.Sprintf("field %q: type tag %q: %v", e.Field, e.Tag, e.Err)
	}
	return fmt.Sprintf("field %q: cannot convert %q to %s: %v", e.Field, e.Value, e.Tag, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTypeConversion.
func (e *TypeConversionError) Is(target error) bool {
	return target == ErrTypeConversion
}

// MissingFieldError names a placeholder that has no value in the record.
type MissingFieldError struct {
	Field string
}

// Error implements error.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q referenced by template not found in record", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
