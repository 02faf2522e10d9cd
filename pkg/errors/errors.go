// Package errors holds the error kinds an enrollsync run can fail with.
// Each kind answers errors.Is for one sentinel, so the CLI can pick an exit
// code without knowing which package failed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-exported from the standard library so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Sentinels matched by the error kinds below.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingReference means the clearinghouse file names institutions
	// or degree titles that the reference tables lack.
	ErrMissingReference = errors.New("missing reference data")

	// ErrInvariant marks a programming error.
	ErrInvariant = errors.New("invariant violated")
)

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsValidationError(err error) bool  { return errors.Is(err, ErrInvalidInput) }
func IsMissingReference(err error) bool { return errors.Is(err, ErrMissingReference) }
func IsInvariant(err error) bool        { return errors.Is(err, ErrInvariant) }

// NotFoundError is a lookup miss, such as a contact id the CRM does not
// have.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError rejects a value handed to a constructor or option.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// WrapValidation turns err into a ValidationError on field. A nil err stays
// nil.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConfigError is a setting that cannot work, such as an unknown CRM source
// kind.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingReferenceError is returned by the clearinghouse pre-flight check.
// Nothing is matched once it fires; the operator fixes the reference tables
// from the correction files listed in Reports and reruns the import.
type MissingReferenceError struct {
	Degrees      []string // degree titles absent from the degree table
	Institutions []string // raw NNNNNN-BB codes absent from the college table
	Reports      []string // correction files written for the operator
}

// Empty reports whether nothing is missing.
func (e *MissingReferenceError) Empty() bool {
	return len(e.Degrees) == 0 && len(e.Institutions) == 0
}

func (e *MissingReferenceError) Error() string {
	var b strings.Builder
	b.WriteString("reference data incomplete: ")
	if n := len(e.Degrees); n > 0 {
		fmt.Fprintf(&b, "%d degree title(s) missing from the degree list", n)
		if len(e.Institutions) > 0 {
			b.WriteString(", ")
		}
	}
	if n := len(e.Institutions); n > 0 {
		fmt.Fprintf(&b, "%d institution(s) missing from the college list", n)
	}
	if len(e.Reports) > 0 {
		fmt.Fprintf(&b, " (see %s)", strings.Join(e.Reports, ", "))
	}
	return b.String()
}

func (e *MissingReferenceError) Is(target error) bool { return target == ErrMissingReference }

// InvariantError reports something earlier stages rule out, such as a
// college lookup miss after the pre-flight check passed.
type InvariantError struct {
	Component string
	Message   string
}

func NewInvariantError(component, format string, args ...any) *InvariantError {
	return &InvariantError{Component: component, Message: fmt.Sprintf(format, args...)}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Component, e.Message)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariant }

// ParseError is malformed input: a CSV file, a date cell, a config file.
type ParseError struct {
	Format  string
	File    string
	Line    int
	Message string
	Err     error
}

func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// WrapParse is NewParseError with err as the message. A nil err stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

func (e *ParseError) Error() string {
	switch {
	case e.File == "":
		return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError is a failed file operation on Path.
type IOError struct {
	Operation string // open, read, create, write, close
	Path      string
	Err       error
}

// WrapIO wraps err as an IOError. A nil err stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ResourceError is a failed operation on a CRM object or a pipeline stage,
// for example updating one enrollment.
type ResourceError struct {
	Operation string
	Resource  string
	ID        string // optional
	Err       error
}

// WrapResource wraps err as a ResourceError. A nil err stays nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
