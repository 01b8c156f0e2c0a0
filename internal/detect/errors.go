package detect

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a submission failure
type ErrorType string

const (
	// ErrTypeValidation indicates no file was selected
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeTransport indicates the request could not be completed
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeServer indicates a non-success HTTP status
	ErrTypeServer ErrorType = "server"

	// ErrTypeMalformed indicates a success body that is not a valid detection response
	ErrTypeMalformed ErrorType = "malformed"

	// ErrTypeInternal indicates a failure inside the detector itself
	ErrTypeInternal ErrorType = "internal"
)

// User-facing messages
const (
	MsgNoFile        = "Selecciona un archivo .log"
	MsgUnexpected    = "Error inesperado al procesar el archivo."
	msgServerStatus  = "Error del servidor (%d)"
	msgMalformedBody = "Respuesta no valida del servidor: %s"
)

// ErrSuperseded is returned by Submit when a newer submission replaced this one
var ErrSuperseded = errors.New("submission superseded by a newer one")

// Error is the single error kind surfaced to the alert region.
// Error() returns the exact text shown to the user.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same type
func (e *Error) Is(target error) bool {
	if de, ok := target.(*Error); ok {
		return e.Type == de.Type
	}
	return false
}

// Detail returns a diagnostic string including the type and cause
func (e *Error) Detail() string {
	s := fmt.Sprintf("type=%s", e.Type)
	if e.StatusCode > 0 {
		s += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	s += ": " + e.Message
	if e.Cause != nil && e.Cause.Error() != e.Message {
		s += fmt.Sprintf(": cause=%s", e.Cause.Error())
	}
	return s
}

// NewValidationError reports that no file was selected
func NewValidationError() *Error {
	return &Error{Type: ErrTypeValidation, Message: MsgNoFile}
}

// NewTransportError wraps a failed round trip. The cause's own message is
// shown when it has one.
func NewTransportError(cause error) *Error {
	msg := MsgUnexpected
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return &Error{Type: ErrTypeTransport, Message: msg, Cause: cause}
}

// NewServerError builds the alert for a non-success status. An empty detail
// falls back to a message embedding the status code.
func NewServerError(status int, detail string) *Error {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf(msgServerStatus, status)
	}
	return &Error{Type: ErrTypeServer, Message: msg, StatusCode: status}
}

// NewMalformedError reports a success body that failed validation
func NewMalformedError(cause error) *Error {
	return &Error{
		Type:    ErrTypeMalformed,
		Message: fmt.Sprintf(msgMalformedBody, cause),
		Cause:   cause,
	}
}

// NewInternalError wraps an unexpected failure with the default message
func NewInternalError(cause error) *Error {
	return &Error{Type: ErrTypeInternal, Message: MsgUnexpected, Cause: cause}
}

// AsError converts any error into an *Error so it can be shown in the alert
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewTransportError(err)
}

func isType(err error, t ErrorType) bool {
	var de *Error
	return errors.As(err, &de) && de.Type == t
}

// IsValidationError checks if err is a validation error
func IsValidationError(err error) bool { return isType(err, ErrTypeValidation) }

// IsTransportError checks if err is a transport error
func IsTransportError(err error) bool { return isType(err, ErrTypeTransport) }

// IsServerError checks if err is a server error
func IsServerError(err error) bool { return isType(err, ErrTypeServer) }

// IsMalformedError checks if err is a malformed response error
func IsMalformedError(err error) bool { return isType(err, ErrTypeMalformed) }
