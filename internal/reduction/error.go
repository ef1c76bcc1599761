// Package reduction is the transport boundary to the CSS reduction service.
// It issues the HTTP request and classifies every failure into a typed Error.
package reduction

import (
	"errors"
	"fmt"
)

// Kind classifies a reduction failure.
type Kind int

const (
	// KindValidation is detected locally and never reaches the network.
	KindValidation Kind = iota + 1
	// KindService means the service understood the request and rejected it.
	KindService
	// KindTransport means the request could not be completed or the
	// response was unintelligible.
	KindTransport
)

// String returns the category label shown in the error panel.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindService:
		return "ServiceError"
	case KindTransport:
		return "TransportError"
	default:
		return "Error"
	}
}

// Error is the tagged error value produced by a failed submission.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, if any. It is not part of Message.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Name returns the category label of the error.
func (e *Error) Name() string {
	return e.Kind.String()
}

// Is reports whether target is an *Error of the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Validation returns a locally detected input error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Service returns an error carrying the service-reported message verbatim.
func Service(msg string) *Error {
	return &Error{Kind: KindService, Message: msg}
}

// Transport wraps a failure of the request itself.
func Transport(err error) *Error {
	if err == nil {
		return &Error{Kind: KindTransport, Message: "unknown transport failure"}
	}
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// Transportf formats a transport failure that has no underlying error value.
func Transportf(format string, args ...any) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf(format, args...)}
}

// AsError returns err as an *Error. Errors of any other type are classified
// as transport failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return Transport(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}
