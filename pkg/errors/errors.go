package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies launcher failures so that call sites can branch on
// a single discriminant instead of matching message strings.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeToolMissing   ErrorType = "tool_missing"
	ErrorTypePortExhausted ErrorType = "port_exhausted"
	ErrorTypeBuildFailure  ErrorType = "build_failure"
	ErrorTypeHealthCheck   ErrorType = "health_check"
	ErrorTypeProcess       ErrorType = "process"
	ErrorTypeSpawn         ErrorType = "spawn"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeIO            ErrorType = "io"
	ErrorTypeCancelled     ErrorType = "cancelled"
)

// DomainError is a structured error with a type and free-form context.
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func (e *DomainError) Is(target error) bool {
	if other, ok := target.(*DomainError); ok {
		return e.Type == other.Type
	}
	return false
}

// WithContext attaches a key/value pair to the error for diagnostics.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewDomainError(errorType ErrorType, message string, cause error) *DomainError {
	return &DomainError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

func NewValidationError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, cause)
}

func NewToolMissingError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeToolMissing, message, cause)
}

func NewPortExhaustedError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypePortExhausted, message, cause)
}

func NewBuildFailureError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeBuildFailure, message, cause)
}

func NewHealthCheckError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeHealthCheck, message, cause)
}

func NewProcessError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeProcess, message, cause)
}

func NewSpawnError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeSpawn, message, cause)
}

func NewTimeoutError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeTimeout, message, cause)
}

func NewIOError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeIO, message, cause)
}

func NewCancelledError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeCancelled, message, cause)
}

func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Type == t
}

func IsValidationError(err error) bool    { return isType(err, ErrorTypeValidation) }
func IsToolMissingError(err error) bool   { return isType(err, ErrorTypeToolMissing) }
func IsPortExhaustedError(err error) bool { return isType(err, ErrorTypePortExhausted) }
func IsBuildFailureError(err error) bool  { return isType(err, ErrorTypeBuildFailure) }
func IsHealthCheckError(err error) bool   { return isType(err, ErrorTypeHealthCheck) }
func IsProcessError(err error) bool       { return isType(err, ErrorTypeProcess) }
func IsSpawnError(err error) bool         { return isType(err, ErrorTypeSpawn) }
func IsTimeoutError(err error) bool       { return isType(err, ErrorTypeTimeout) }
func IsIOError(err error) bool            { return isType(err, ErrorTypeIO) }
func IsCancelledError(err error) bool     { return isType(err, ErrorTypeCancelled) }

// ErrorCollection aggregates independent failures, used when stopping
// multiple services where one failure must not mask the others.
type ErrorCollection struct {
	Errors []error
}

func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		Errors: make([]error, 0),
	}
}

func (e *ErrorCollection) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred: %v", len(e.Errors), e.Errors[0])
}

func (e *ErrorCollection) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *ErrorCollection) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ErrorCollection) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
