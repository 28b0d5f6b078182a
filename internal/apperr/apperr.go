// Package apperr defines the error taxonomy shared by the grading and
// progression core and its HTTP surface.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindValidation marks malformed input. Rejected before any
	// grading or persistence happens, with all violations collected.
	KindValidation Kind = iota
	// KindNotFound marks a missing module/lesson/product reference.
	KindNotFound
	// KindConflict marks a duplicate submission where retakes are
	// disallowed. Terminal, not retryable.
	KindConflict
	// KindDataIntegrity marks malformed stored content, e.g. an answer
	// key that cannot be normalized. Never swallowed.
	KindDataIntegrity
	// KindInternal is everything else.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDataIntegrity:
		return "data_integrity"
	default:
		return "internal"
	}
}

// Error is the taxonomy carrier. Details holds per-field violations for
// validation errors so callers get all of them at once.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a validation error carrying every violation found.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// KindOf reports the taxonomy kind of err, or KindInternal when err is
// not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a taxonomy kind to the response status used by all
// controllers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDataIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DetailsOf returns the collected violation details, if any.
func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
