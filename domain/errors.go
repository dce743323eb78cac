package domain

import "fmt"

// Error codes used across the analysis kernel. Recoverable codes are
// accumulated into reports; only ErrCodeFatal and ErrCodeConfig surface
// directly to callers.
const (
	// ErrCodeParse indicates a file could not be parsed at all
	ErrCodeParse = "PARSE_ERROR"

	// ErrCodeLoad indicates a rule definition failed validation
	ErrCodeLoad = "LOAD_ERROR"

	// ErrCodeEvaluation indicates a rule failed while being evaluated
	ErrCodeEvaluation = "EVALUATION_ERROR"

	// ErrCodeTimeout indicates a (file, rule) evaluation exceeded its budget
	ErrCodeTimeout = "TIMEOUT_ERROR"

	// ErrCodeConfig indicates invalid configuration
	ErrCodeConfig = "CONFIG_ERROR"

	// ErrCodeFatal indicates the whole run is meaningless (no files, no rules)
	ErrCodeFatal = "FATAL_ERROR"
)

// DomainError is the error type returned across kernel boundaries
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a DomainError with an arbitrary code
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewParseError creates a per-file parse failure error
func NewParseError(message string, cause error) error {
	return DomainError{Code: ErrCodeParse, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return DomainError{Code: ErrCodeConfig, Message: message, Cause: cause}
}

// NewFatalError creates an error that aborts the whole run
func NewFatalError(message string, cause error) error {
	return DomainError{Code: ErrCodeFatal, Message: message, Cause: cause}
}

// IsFatal reports whether err is a run-aborting DomainError
func IsFatal(err error) bool {
	de, ok := err.(DomainError)
	return ok && de.Code == ErrCodeFatal
}
