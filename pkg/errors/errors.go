// Package errors holds the typed failures shared by the pipeline, the
// registries, the stores and the HTTP layer. Each type matches one of the
// sentinels below through errors.Is, so callers branch on the sentinel and
// read details with errors.As.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need a single errors import.
var New = errors.New

var (
	ErrNotFound       = errors.New("not found")
	ErrNoDataFound    = errors.New("no data found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnmappedSource = errors.New("unmapped source type")
	ErrTimeout        = errors.New("operation timed out")
	ErrCanceled       = errors.New("operation canceled")
)

// NotFoundError reports a missing registry record or stored property.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NoDataFoundError is returned when none of the sources hold a record for a
// property. It also matches ErrNotFound so it surfaces as a plain not-found.
type NoDataFoundError struct {
	PropertyID string
}

func (e *NoDataFoundError) Error() string {
	if e.PropertyID == "" {
		return "no data found in any source"
	}
	return "no data found in any source for property " + e.PropertyID
}

func (e *NoDataFoundError) Is(target error) bool {
	return target == ErrNoDataFound || target == ErrNotFound
}

// NewNoDataFoundError creates a NoDataFoundError.
func NewNoDataFoundError(propertyID string) *NoDataFoundError {
	return &NoDataFoundError{PropertyID: propertyID}
}

// UnmappedSourceError reports a source type without a field mapping table.
// The adapter logs it and passes the record through.
type UnmappedSourceError struct {
	Source string
}

func (e *UnmappedSourceError) Error() string {
	return fmt.Sprintf("no field mapping for source %q", e.Source)
}

func (e *UnmappedSourceError) Is(target error) bool { return target == ErrUnmappedSource }

// NewUnmappedSourceError creates an UnmappedSourceError.
func NewUnmappedSourceError(source string) *UnmappedSourceError {
	return &UnmappedSourceError{Source: source}
}

// ValidationError rejects caller input such as a blank property id.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports an unusable setting found while wiring backends.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError reports a registry fixture or report file that could not be decoded.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ResourceError reports a failed lookup, upsert or fetch against a backend.
type ResourceError struct {
	Operation string // "lookup", "upsert", "get"
	Resource  string // "property", "dlr record", ...
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// TimeoutError reports a registry that did not answer within the lookup timeout.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

func (e *TimeoutError) Error() string {
	if e.Duration == "" {
		return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Message: message}
}

// IsNotFound reports whether err is a missing record, including NoDataFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsNoDataFound reports whether no source had data.
func IsNoDataFound(err error) bool { return errors.Is(err, ErrNoDataFound) }

// IsValidationError reports whether err rejects caller input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsTimeout reports whether err is a lookup timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCanceled reports whether err stems from a canceled lookup.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// WrapIO wraps err as an IOError. A nil err stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapResource wraps err as a ResourceError. A nil err stays nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapParse wraps err as a ParseError. A nil err stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
