package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidData  = errors.New("invalid data provided for profile operations")
	ErrUnhandled    = errors.New("unexpected error")
	ErrUserNotFound = errors.New("user not found")
)

// FieldError is one rejected input field. Path is dotted, e.g. "profile.bio".
type FieldError struct {
	Path    string
	Message string
}

// ValidationError carries every rejected field of a request. It matches
// ErrInvalidData with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Path+": "+f.Message)
	}
	return ErrInvalidData.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}

// orNil returns e only when it holds at least one field.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
