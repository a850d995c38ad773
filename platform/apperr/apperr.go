// Package apperr provides the typed error taxonomy shared by every module.
// Upstream clients classify failures into a Kind, the workflow propagates
// them unchanged, and the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindTransform indicates a malformed questionnaire that cannot be turned into a payload.
	KindTransform
	// KindValidation indicates the upstream rejected the payload (400/422).
	KindValidation
	// KindAuth indicates the upstream refused our credentials (401/403).
	KindAuth
	// KindRateLimit indicates the upstream throttled us (429).
	KindRateLimit
	// KindService indicates a transient upstream failure (500/502/503) or a failed quote job.
	KindService
	// KindNetwork indicates a transport failure after the retry budget was spent.
	KindNetwork
	// KindTimeout indicates polling exhausted its attempt budget.
	KindTimeout
	// KindNotFound indicates a quote record is missing or expired.
	KindNotFound
	// KindConflict indicates a duplicate submission.
	KindConflict
	// KindBadRequest indicates a malformed inbound request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

var kindNames = map[Kind]string{
	KindUnknown:    "UNKNOWN_ERROR",
	KindTransform:  "TRANSFORM_ERROR",
	KindValidation: "VALIDATION_ERROR",
	KindAuth:       "AUTH_ERROR",
	KindRateLimit:  "RATE_LIMITED",
	KindService:    "SERVICE_ERROR",
	KindNetwork:    "NETWORK_ERROR",
	KindTimeout:    "TIMEOUT",
	KindNotFound:   "NOT_FOUND",
	KindConflict:   "CONFLICT",
	KindBadRequest: "BAD_REQUEST",
	KindInternal:   "INTERNAL_ERROR",
}

// String returns the stable wire code of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// FieldError describes one offending field in a rejected payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Code    string // Upstream error code, if the upstream sent one
	Message string
	Op      string       // Operation that failed (optional)
	Status  int          // Upstream HTTP status (optional)
	Err     error        // Underlying error (optional)
	Fields  []FieldError // Per-field errors for validation failures
	Details interface{}  // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the inbound API answers with for this kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindTransform, KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusBadGateway
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindService, KindNetwork:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a user-triggered retry is appropriate. Only
// transient kinds qualify; unclassified failures are not retried.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindService, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation and returns the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets additional details and returns the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// WithFields sets the per-field errors and returns the error.
func (e *Error) WithFields(fields []FieldError) *Error {
	e.Fields = fields
	return e
}

// WithStatus records the upstream HTTP status and returns the error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithCode records the upstream error code and returns the error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// Convenience constructors for common error types.

// Transform creates a transform error listing the missing fields.
func Transform(message string, fields ...FieldError) *Error {
	return New(KindTransform, message).WithFields(fields)
}

// Validation creates a validation error.
func Validation(message string, fields ...FieldError) *Error {
	return New(KindValidation, message).WithFields(fields)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// Timeout creates a timeout error.
func Timeout(message string) *Error {
	return New(KindTimeout, message)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if the chain holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
