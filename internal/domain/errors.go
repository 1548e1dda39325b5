package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrParse indicates that an input table could not be read.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates that an expected column is absent.
	ErrSchema = errors.New("schema error")

	// ErrExport indicates that an output artifact could not be written.
	ErrExport = errors.New("export error")

	// ErrNotFound indicates that a requested artifact was never produced.
	ErrNotFound = errors.New("not found")
)

// ParseError provides details about an unreadable or malformed input table.
type ParseError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// SchemaError provides details about a column that is absent after merge.
type SchemaError struct {
	Column string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q not present", e.Column)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// ExportError provides details about a failed artifact write.
type ExportError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ExportError) Unwrap() error {
	return ErrExport
}

// NotFoundError provides details about a missing artifact.
type NotFoundError struct {
	Entity string
	Name   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Name)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewParseError creates a new ParseError.
func NewParseError(path string, cause error) *ParseError {
	return &ParseError{Path: path, Cause: cause}
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(column string) *SchemaError {
	return &SchemaError{Column: column}
}

// NewExportError creates a new ExportError.
func NewExportError(path string, cause error) *ExportError {
	return &ExportError{Path: path, Cause: cause}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, name string) *NotFoundError {
	return &NotFoundError{Entity: entity, Name: name}
}
