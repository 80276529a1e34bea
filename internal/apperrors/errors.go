// Package apperrors holds the error kinds shared by the data access layer,
// the ingestion pipeline and the HTTP handlers.
package apperrors

import (
	"fmt"
	"strings"
)

// FieldError names one offending input field, rendered as {camp, error}.
type FieldError struct {
	Camp  string `json:"camp"`
	Error string `json:"error"`
}

type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(msg string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Details: details}
}

// DuplicateError reports a unique-key conflict. Details has one entry per
// conflicting field.
type DuplicateError struct {
	Message string
	Details []FieldError
}

func (e *DuplicateError) Error() string {
	return e.Message
}

func (e *DuplicateError) Fields() []string {
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Camp)
	}
	return fields
}

type NotFoundError struct {
	Entity  string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Entity + " not found"
}

func NewNotFound(entity, msg string) *NotFoundError {
	return &NotFoundError{Entity: entity, Message: msg}
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// StorageError wraps a database failure. The request path never retries it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ParseError means a CSV file could not be opened or read. It is fatal to an
// ingestion run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Join renders field details as "camp: error; ..." for log lines.
func Join(details []FieldError) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, d.Camp+": "+d.Error)
	}
	return strings.Join(parts, "; ")
}
