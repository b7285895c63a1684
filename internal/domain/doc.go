// Package domain holds what every layer agrees on about failures: the
// ErrNotFound, ErrValidation and ErrUnavailable sentinels and the
// ValidationError and PersistenceError types. Entities live in
// subpackages such as domain/todo.
package domain
