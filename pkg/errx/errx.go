package errx

import (
	"fmt"
	"net/http"
)

// Type classifies an error for transport-agnostic handling
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
	TypeInternal      Type = "INTERNAL"
)

// ErrorCode is a registered, namespaced error definition
type ErrorCode struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry namespaces error codes for one domain (e.g. "RMS")
type Registry struct {
	prefix string
}

// NewRegistry creates a registry whose codes are prefixed with the given namespace
func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix}
}

// Register defines a new error code within the registry namespace
func (r *Registry) Register(code string, t Type, httpStatus int, message string) ErrorCode {
	return ErrorCode{
		Code:       r.prefix + "_" + code,
		Type:       t,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

// New creates an error from a registered code
func (r *Registry) New(code ErrorCode) *Error {
	return &Error{
		Code:       code.Code,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
		Message:    code.Message,
	}
}

// NewWithCause creates an error from a registered code, preserving the underlying cause
func (r *Registry) NewWithCause(code ErrorCode, cause error) *Error {
	e := r.New(code)
	e.Cause = cause
	return e
}

// Error is a structured application error
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a single key/value detail and returns the error for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges a map of details and returns the error for chaining
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// ToHTTPResponse renders the error as a JSON-serializable response body
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"error":   e.Message,
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// Wrap converts an arbitrary error into an internal *Error
func Wrap(err error, message string) *Error {
	return &Error{
		Code:       "INTERNAL_ERROR",
		Type:       TypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      err,
	}
}
