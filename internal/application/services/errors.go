package services

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

type ValidationKind string

const (
	KindMissing         ValidationKind = "missing"
	KindInvalid         ValidationKind = "invalid"
	KindTooLarge        ValidationKind = "too_large"
	KindParentNotFound  ValidationKind = "parent_not_found"
	KindParentNotFolder ValidationKind = "parent_not_folder"
	KindAlreadyExists   ValidationKind = "already_exists"
	KindNoContent       ValidationKind = "no_content"
)

// ValidationError is a client mistake detected before any write happened.
// Error() is the message returned to the client.
type ValidationError struct {
	Field string
	Kind  ValidationKind
}

func invalid(field string, kind ValidationKind) error {
	return &ValidationError{Field: field, Kind: kind}
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissing:
		return "Missing " + e.Field
	case KindInvalid:
		return "Invalid " + e.Field
	case KindTooLarge:
		return upperFirst(e.Field) + " too large"
	case KindParentNotFound:
		return "Parent not found"
	case KindParentNotFolder:
		return "Parent is not a folder"
	case KindAlreadyExists:
		return "Already exist"
	case KindNoContent:
		return "A folder doesn't have content"
	}
	return "Invalid request"
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
