package rowtmpl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/rowtmpl/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrSourceOpen indicates a source file is missing, unreadable or corrupt
	ErrSourceOpen = errors.New("rowtmpl: cannot open source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("rowtmpl: unsupported file format")

	// ErrSourceConsumed indicates the records of a source were already iterated
	ErrSourceConsumed = errors.New("rowtmpl: source already consumed")

	// ErrNoSuchSheet indicates the requested sheet index does not exist
	ErrNoSuchSheet = errors.New("rowtmpl: no such sheet")

	// ErrFieldNotFound indicates a field name is not part of the source header
	ErrFieldNotFound = errors.New("rowtmpl: field not found")

	// ErrContextCancelled indicates context was cancelled
	ErrContextCancelled = errors.New("rowtmpl: context cancelled")

	// ErrTypeConversion indicates a value could not be coerced to its declared type
	ErrTypeConversion = model.ErrTypeConversion

	// ErrMissingField indicates a template references a field absent from the record
	ErrMissingField = model.ErrMissingField

	// ErrDuplicateColumnName is returned when a source contains duplicate column names
	ErrDuplicateColumnName = model.ErrDuplicateColumnName
)

type (
	// TypeConversionError describes a field whose value could not be coerced.
	TypeConversionError = model.TypeConversionError
	// MissingFieldError names a placeholder that has no value in the record.
	MissingFieldError = model.MissingFieldError
)

// SourceOpenError reports a source that could not be opened.
type SourceOpenError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("rowtmpl: cannot open source %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SourceOpenError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSourceOpen.
func (e *SourceOpenError) Is(target error) bool {
	return target == ErrSourceOpen
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	SheetName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithSheet adds sheet or table context to the error
func (ec *ErrorContext) WithSheet(sheetName string) *ErrorContext {
	ec.SheetName = sheetName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("rowtmpl: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.SheetName != "" {
		parts = append(parts, "sheet: "+ec.SheetName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}

func openError(path string, err error) error {
	return &SourceOpenError{Path: path, Err: err}
}
