package shared

import "errors"

// DomainError is a business rule violation. Code is stable and machine
// readable (LOAN_NOT_ACTIVE, INVALID_AMOUNT); the HTTP layer maps it to a
// status. Message is shown to the caller.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compares codes only, so a wrapped NotFound("Loan") still matches
// ErrNotFound
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	return errors.As(target, &other) && other.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NotFound reports a missing record of the named kind
func NotFound(resource string) *DomainError {
	return NewDomainError(codeNotFound, resource+" not found")
}

const codeNotFound = "NOT_FOUND"

// Generic errors. Rules with a more precise meaning use their own codes.
var (
	ErrNotFound      = NewDomainError(codeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Operation not permitted")
	// ErrConcurrencyConflict means the row changed since it was loaded;
	// the caller should reload and retry
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Record was modified by another request")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
