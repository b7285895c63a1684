package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Sentinels matched with errors.Is across layers.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrUnavailable = errors.New("unavailable")
)

// Validation messages shared by entity validators.
const (
	MsgRequired = "is required"
	MsgNotText  = "must be a string"
)

// ValidationError lists rejected input fields, keyed by field name. It
// matches ErrValidation. The HTTP layer answers every validation failure
// with the same generic message, so Fields only reach logs and tests.
type ValidationError struct {
	Fields map[string]string
}

// Error renders the fields in name order: "validation error: a: x; b: y".
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	for i, field := range slices.Sorted(maps.Keys(e.Fields)) {
		sep := "; "
		if i == 0 {
			sep = ": "
		}
		b.WriteString(sep + field + ": " + e.Fields[field])
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PersistenceError is a storage failure whose message the API returns as is.
// Op is the repository call that failed (create, save, delete).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + ": unknown storage failure"
	}
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
