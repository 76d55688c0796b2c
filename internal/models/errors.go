package models

import (
	"errors"
	"fmt"
)

// ErrorKind tags a domain error so the HTTP layer can map it to a status
// code without string matching.
type ErrorKind int

const (
	// KindValidation: missing or malformed input. The caller's fault.
	KindValidation ErrorKind = iota
	// KindNotFound: the referenced record does not exist.
	KindNotFound
	// KindConflict: the write collides with an existing record.
	KindConflict
	// KindDepleted: the batch is already empty. A normal domain outcome,
	// not a system fault.
	KindDepleted
)

// Error is a domain error with a kind tag.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Depletedf(format string, args ...any) error {
	return &Error{Kind: KindDepleted, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error and whether err is one.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
