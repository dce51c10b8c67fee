package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every *Error unwraps to exactly one of these, so callers can
// branch with errors.Is regardless of the message.
var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflict")
	ErrDuplicateResult         = errors.New("duplicate result")
	ErrMissingStatus           = errors.New("missing status")
	ErrIncompleteArvSubmission = errors.New("incomplete ARV submission")
	ErrValidation              = errors.New("validation error")
)

// Error is a typed domain error carrying a human readable message and, for
// validation failures, per-field details.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func DuplicateResult(format string, args ...interface{}) error {
	return newError(ErrDuplicateResult, format, args...)
}

func MissingStatus(format string, args ...interface{}) error {
	return newError(ErrMissingStatus, format, args...)
}

// IncompleteArvSubmission reports the missing ARV fields in a stable order.
func IncompleteArvSubmission(missing []string) error {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	e := newError(ErrIncompleteArvSubmission, "ARV result submission is missing: %s", strings.Join(sorted, ", "))
	e.Fields = make(map[string]string, len(sorted))
	for _, field := range sorted {
		e.Fields[field] = field + " is required"
	}
	return e
}

// Validation builds a validation error from field -> message pairs.
func Validation(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := newError(ErrValidation, "invalid fields: %s", strings.Join(keys, ", "))
	e.Fields = fields
	return e
}

// ValidationField is a shorthand for a single invalid field.
func ValidationField(field, message string) error {
	return Validation(map[string]string{field: message})
}

// Fields returns the per-field details of err, if any.
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Message returns the message of a typed error, or "" for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// IsDomain reports whether err belongs to the typed taxonomy.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
