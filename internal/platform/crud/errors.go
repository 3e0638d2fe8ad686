package crud

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// FieldError names one invalid field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field of a submitted record. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("%s: %s", e.Entity, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferenceError reports a reference to a row that does not exist. It
// matches ErrReferenceNotFound with errors.Is.
type ReferenceError struct {
	Entity string
	Field  string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d referenced by %s not found", e.Field, e.ID, e.Entity)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrReferenceNotFound }

// Checker accumulates field errors for one record.
type Checker struct {
	entity string
	fields []FieldError
}

func NewChecker(entity string) *Checker {
	return &Checker{entity: entity}
}

// Required flags field when present is false.
func (c *Checker) Required(field string, present bool) {
	if !present {
		c.fields = append(c.fields, FieldError{Field: field, Message: "is required"})
	}
}

// NotBlank flags a missing or whitespace-only string.
func (c *Checker) NotBlank(field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		c.fields = append(c.fields, FieldError{Field: field, Message: "is required"})
	}
}

// Check flags field with message when ok is false.
func (c *Checker) Check(field string, ok bool, message string) {
	if !ok {
		c.fields = append(c.fields, FieldError{Field: field, Message: message})
	}
}

// Err returns a *ValidationError, or nil when nothing was flagged.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Entity: c.entity, Fields: c.fields}
}
