package sentinelgate

import (
	"errors"
	"fmt"
)

// JSON-RPC error codes the gateway returns for MCPP-specific conditions
// (mirrors internal/domain/mcpperr on the server).
const (
	codeCacheMiss              = -32001
	codeReferenceNotFound      = -32002
	codeResolutionFailed       = -32003
	codeDataNotFound           = -32004
	codeInsufficientPermission = -32005
	codeInvalidDataUsage       = -32006
	codeConsentRequired        = -32007
	codeConsentDenied          = -32008
	codeConsentTimeout         = -32009
	codeInvalidTarget          = -32010
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConsentRequired is returned when a resolution needs a consent prompt
	// the caller has not yet answered.
	ErrConsentRequired = errors.New("consent required")

	// ErrConsentDenied is returned when the requester denied a consent prompt.
	ErrConsentDenied = errors.New("consent denied")

	// ErrConsentTimeout is returned when a consent prompt went unanswered
	// past its deadline.
	ErrConsentTimeout = errors.New("consent timeout")

	// ErrServerUnreachable is returned when the gateway cannot be contacted.
	ErrServerUnreachable = errors.New("server unreachable")
)

// RPCError is the base error type for JSON-RPC error responses from the
// gateway that don't map to one of the named sentinel errors below.
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

// Error returns the error message.
func (e *RPCError) Error() string {
	return fmt.Sprintf("mcpp [%d]: %s", e.Code, e.Message)
}

// ConsentRequiredError is returned when a data resolution needs a consent
// decision before it can proceed.
type ConsentRequiredError struct {
	RequestID string
	Reason    string
}

// Error returns a human-readable description of the pending consent request.
func (e *ConsentRequiredError) Error() string {
	return fmt.Sprintf("consent required for request %s: %s", e.RequestID, e.Reason)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrConsentRequired).
func (e *ConsentRequiredError) Is(target error) bool {
	return target == ErrConsentRequired
}

// ConsentDeniedError is returned when the requester denied a pending
// consent prompt.
type ConsentDeniedError struct {
	RequestID string
	Reason    string
}

// Error returns a human-readable description of the consent denial.
func (e *ConsentDeniedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("consent denied for request %s: %s", e.RequestID, e.Reason)
	}
	return fmt.Sprintf("consent denied for request %s", e.RequestID)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrConsentDenied).
func (e *ConsentDeniedError) Is(target error) bool {
	return target == ErrConsentDenied
}

// ConsentTimeoutError is returned when a consent prompt went unanswered
// past its deadline.
type ConsentTimeoutError struct {
	RequestID string
}

// Error returns a human-readable description of the consent timeout.
func (e *ConsentTimeoutError) Error() string {
	return fmt.Sprintf("consent timeout for request %s", e.RequestID)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrConsentTimeout).
func (e *ConsentTimeoutError) Is(target error) bool {
	return target == ErrConsentTimeout
}

// ServerUnreachableError is returned when the gateway cannot be contacted.
type ServerUnreachableError struct {
	Cause error
}

// Error returns a human-readable description of the server unreachable error.
func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

// Unwrap returns the underlying error cause.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrServerUnreachable).
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}

// errorFromRPC converts a raw JSON-RPC error code/message/data into the most
// specific error type the SDK exposes.
func errorFromRPC(code int, message string, data interface{}) error {
	switch code {
	case codeConsentRequired:
		return &ConsentRequiredError{RequestID: stringField(data, "request_id"), Reason: message}
	case codeConsentDenied:
		return &ConsentDeniedError{RequestID: stringField(data, "request_id"), Reason: message}
	case codeConsentTimeout:
		return &ConsentTimeoutError{RequestID: stringField(data, "request_id")}
	default:
		return &RPCError{Code: code, Message: message, Data: data}
	}
}

// stringField extracts a named string field from a decoded JSON object,
// returning "" if absent or the value isn't a string.
func stringField(data interface{}, field string) string {
	m, ok := data.(map[string]interface{})
	if !ok {
		return ""
	}
	v, ok := m[field].(string)
	if !ok {
		return ""
	}
	return v
}
