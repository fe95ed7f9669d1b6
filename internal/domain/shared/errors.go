package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Status carries the HTTP status for errors originating from the
	// remote API, 0 otherwise.
	Status int `json:"status,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so the
// sentinels below match with errors.Is regardless of message or status.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	return ok && other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewRequestError creates an error for a non-2xx API response. The message
// is the server-supplied one when present, else a generic status text.
func NewRequestError(status int, message string) *DomainError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &DomainError{
		Code:    CodeRequestFailed,
		Message: message,
		Status:  status,
	}
}

// Error codes used across the client
const (
	CodeConnectivity   = "CONNECTIVITY"
	CodeRequestFailed  = "REQUEST_FAILED"
	CodeDecodeFailed   = "DECODE_FAILED"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeSessionCorrupt = "SESSION_CORRUPT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
)

// Common domain errors
var (
	ErrConnectivity   = NewDomainError(CodeConnectivity, "Network unreachable")
	ErrRequestFailed  = NewDomainError(CodeRequestFailed, "Request failed")
	ErrDecodeFailed   = NewDomainError(CodeDecodeFailed, "Malformed response payload")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrSessionCorrupt = NewDomainError(CodeSessionCorrupt, "Stored session data is corrupt")
	ErrUnauthorized   = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
)
