package engine

import "fmt"

// Machine-matchable error codes used across the built-in observers. Callers
// match on codes, not messages.
const (
	CodeValidationFailed    = "validation_failed"
	CodeRequiredField       = "required_field_missing"
	CodeInvalidValue        = "invalid_value"
	CodePermissionDenied    = "permission_denied"
	CodeImmutableField      = "immutable_field"
	CodeBusinessRuleFailed  = "business_rule_failed"
	CodeStorageFailed       = "storage_failed"
	CodeObserverFailed      = "observer_execution_failed"
	CodeModelUnavailable    = "model_unavailable"
)

// ValidationError reports a problem with input shape or value. Field names
// the offending field when known; it may be empty for record-level problems.
type ValidationError struct {
	Code    string
	Message string
	Field   string
}

// NewValidationError builds a field-scoped validation error.
func NewValidationError(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Field: field}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation [%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("validation [%s]: %s", e.Code, e.Message)
}

// SecurityError reports an access or policy violation. Context carries
// free-form detail for audit and debugging; it is never interpreted by the
// engine.
type SecurityError struct {
	Code    string
	Message string
	Context map[string]any
}

// NewSecurityError builds a security error with optional context detail.
func NewSecurityError(code, message string, context map[string]any) *SecurityError {
	return &SecurityError{Code: code, Message: message, Context: context}
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security [%s]: %s", e.Code, e.Message)
}

// BusinessLogicError reports a domain-rule violation.
type BusinessLogicError struct {
	Code    string
	Message string
	Context map[string]any
}

// NewBusinessLogicError builds a business-logic error with optional context
// detail.
func NewBusinessLogicError(code, message string, context map[string]any) *BusinessLogicError {
	return &BusinessLogicError{Code: code, Message: message, Context: context}
}

func (e *BusinessLogicError) Error() string {
	return fmt.Sprintf("business [%s]: %s", e.Code, e.Message)
}

// SystemError reports an infrastructure failure. Cause preserves the original
// error when one exists.
type SystemError struct {
	Code    string
	Message string
	Cause   error
}

// NewSystemError builds a system error wrapping cause.
func NewSystemError(code, message string, cause error) *SystemError {
	return &SystemError{Code: code, Message: message, Cause: cause}
}

func (e *SystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("system [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("system [%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *SystemError) Unwrap() error { return e.Cause }

// ValidationWarning is a non-fatal advisory attached to a record. Warnings
// never affect the batch verdict.
type ValidationWarning struct {
	Code    string
	Message string
	Field   string
}

// NewValidationWarning builds a field-scoped warning.
func NewValidationWarning(code, field, message string) *ValidationWarning {
	return &ValidationWarning{Code: code, Message: message, Field: field}
}

func (w *ValidationWarning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("warning [%s] %s: %s", w.Code, w.Field, w.Message)
	}
	return fmt.Sprintf("warning [%s]: %s", w.Code, w.Message)
}

// ErrorCode extracts the machine-matchable code from any taxonomy error.
// Returns "" for errors outside the taxonomy.
func ErrorCode(err error) string {
	switch e := err.(type) {
	case *ValidationError:
		return e.Code
	case *SecurityError:
		return e.Code
	case *BusinessLogicError:
		return e.Code
	case *SystemError:
		return e.Code
	}
	return ""
}
