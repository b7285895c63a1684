// Package todo holds the Todo entity and the boundary rules for its two
// user-supplied attributes.
package todo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// MaxFieldLength is the maximum number of characters allowed in Title and
// Description.
const MaxFieldLength = 255

// Field names accepted in request payloads.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Todo represents a persisted task item. ID and the timestamps are owned by
// the storage layer.
type Todo struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input carries the validated user-supplied attributes of a Todo.
type Input struct {
	Title       string
	Description string
}

// Validate checks the boundary rules: both fields non-blank and at most
// MaxFieldLength characters. Returns a *domain.ValidationError (wrapping
// domain.ErrValidation) with per-field details, or nil.
func (in *Input) Validate() error {
	fields := make(map[string]string)
	in.check(fields)
	return validationError(fields)
}

// ParseInput extracts title and description from a raw field map as decoded
// from a request body, trims surrounding whitespace and validates the result.
// Keys other than title and description are ignored. A missing key, a
// non-string value, a blank string or an overlong string all fail with a
// *domain.ValidationError.
func ParseInput(raw map[string]any) (Input, error) {
	fields := make(map[string]string)

	in := Input{
		Title:       stringField(raw, FieldTitle, fields),
		Description: stringField(raw, FieldDescription, fields),
	}
	in.check(fields)

	if err := validationError(fields); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Apply overwrites both attributes of t with in. It reports whether anything
// changed.
func (t *Todo) Apply(in Input) bool {
	changed := t.Title != in.Title || t.Description != in.Description
	t.Title = in.Title
	t.Description = in.Description
	return changed
}

// ParseID converts a raw identifier into the storage key. Identifiers that
// are not base-10 integers can never match a stored record, so ok is false
// for them.
func ParseID(raw string) (id int64, ok bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// check records a message for every field that breaks a rule and has no
// message yet.
func (in *Input) check(fields map[string]string) {
	for _, f := range []struct{ key, value string }{
		{FieldTitle, in.Title},
		{FieldDescription, in.Description},
	} {
		if _, failed := fields[f.key]; failed {
			continue
		}
		if msg := checkText(f.value); msg != "" {
			fields[f.key] = msg
		}
	}
}

// stringField returns raw[key] with surrounding whitespace removed, or
// records why it is not usable text.
func stringField(raw map[string]any, key string, fields map[string]string) string {
	v, present := raw[key]
	if !present || v == nil {
		fields[key] = domain.MsgRequired
		return ""
	}
	s, isText := v.(string)
	if !isText {
		fields[key] = domain.MsgNotText
		return ""
	}
	return strings.TrimSpace(s)
}

func checkText(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.MsgRequired
	}
	if n := utf8.RuneCountInString(s); n > MaxFieldLength {
		return fmt.Sprintf("must be at most %d characters, got %d", MaxFieldLength, n)
	}
	return ""
}

func validationError(fields map[string]string) error {
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
