package libovsdb

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures surfaced by the client.
type ErrorKind int

const (
	// ConnectionError means the transport could not be established, or writing the request or reading the
	// response failed.
	ConnectionError ErrorKind = iota
	// InvalidResponse means the response is JSON but lacks the expected result array or object shape.
	InvalidResponse
	// InvalidResponseJSON means the response bytes are not JSON text.
	InvalidResponseJSON
	// UnexpectedResponse means a column or field was absent or had the wrong shape.
	UnexpectedResponse
	// QueryError means the database reported an operational error.
	QueryError
	// InconsistentInstruction means a precondition of a write was violated on the client side.
	InconsistentInstruction
)

var kindNames = map[ErrorKind]string{
	ConnectionError:         "ConnectionError",
	InvalidResponse:         "InvalidResponse",
	InvalidResponseJSON:     "InvalidResponseJSON",
	UnexpectedResponse:      "UnexpectedResponse",
	QueryError:              "QueryError",
	InconsistentInstruction: "InconsistentInstruction",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the structured error value returned by every client operation.
type Error struct {
	Kind    ErrorKind
	Message string
	// Detail is optional free text, e.g. the offending column or the database diagnostic.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, message, detail string) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail}
}

// WrapError creates an error of the given kind caused by err. The detail is the cause's message.
func WrapError(kind ErrorKind, message string, err error) *Error {
	e := &Error{Kind: kind, Message: message, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func unexpectedColumn(column, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    UnexpectedResponse,
		Message: fmt.Sprintf(format, args...),
		Detail:  column,
	}
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
