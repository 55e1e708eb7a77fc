package library

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a rejected request.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindReference
	KindConflict
	KindStorage
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindReference:
		return "reference_error"
	case KindConflict:
		return "uniqueness_conflict"
	case KindStorage:
		return "storage_inconsistency"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

const (
	MsgUserNotFound      = "user not found"
	MsgAuthorNotFound    = "author not found"
	MsgBookNotFound      = "book is not found"
	MsgFileNotFound      = "file not found in storage"
	MsgFullNameNotUnique = "author full name must be unique"
	MsgTitleNotUnique    = "title must be unique"
	MsgPagesExceedTotal  = "pages read cannot exceed the total number of pages in the book"
	MsgFileMissing       = "the file may have been deleted from storage or moved to another location, upload the file again"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a rejection the caller can act on. Nothing was written when it
// is returned.
type Error struct {
	Kind   Kind
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Kind.String()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

func newError(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Fields: []FieldError{{Field: field, Message: message}}}
}

func invalid(field, message string) *Error {
	return newError(KindValidation, field, message)
}

func missingReference(field, message string) *Error {
	return newError(KindReference, field, message)
}

func conflict(field, message string) *Error {
	return newError(KindConflict, field, message)
}

func notFound(entity string) *Error {
	return newError(KindNotFound, "id", entity+" not found")
}

// IsKind reports whether err is a rejection of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// translateWrite maps a storage-level unique violation onto the same
// conflict the pre-check reports and wraps anything unexpected.
func translateWrite(err error, op, field, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict(field, message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrapOp(err error, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return fmt.Errorf("%s: %w", op, err)
}
