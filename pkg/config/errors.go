package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a load failure by the stage that produced it.
type ErrorKind string

const (
	// ErrorKindSource indicates the document bytes could not be read.
	ErrorKindSource ErrorKind = "source"

	// ErrorKindDeserialization indicates the content is not valid YAML or JSON.
	ErrorKindDeserialization ErrorKind = "deserialization"

	// ErrorKindStructural indicates one or more schema violations.
	ErrorKindStructural ErrorKind = "structural"

	// ErrorKindSemantic indicates one or more cross-field rule violations.
	ErrorKindSemantic ErrorKind = "semantic"
)

// Sentinel errors usable with errors.Is against any *LoadError of that kind.
var (
	ErrSourceUnavailable   = &LoadError{Kind: ErrorKindSource}
	ErrDeserialization     = &LoadError{Kind: ErrorKindDeserialization}
	ErrStructuralViolation = &LoadError{Kind: ErrorKindStructural}
	ErrSemanticViolation   = &LoadError{Kind: ErrorKindSemantic}
)

// LoadError is a classified load failure.
type LoadError struct {
	// Kind is the stage that failed.
	Kind ErrorKind `json:"kind"`

	// Source names the document being loaded.
	Source string `json:"source,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error", e.Kind)
	}
	if e.Kind == ErrorKindSemantic {
		// Semantic errors already name their source document.
		return e.Err.Error()
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Err.Error())
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *LoadError) Is(target error) bool {
	t, ok := target.(*LoadError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newLoadError(kind ErrorKind, source string, err error) *LoadError {
	return &LoadError{Kind: kind, Source: source, Err: err}
}

// KindOf returns the kind of a load failure, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// SemanticValidationError aggregates every cross-field rule violation
// found for one document.
type SemanticValidationError struct {
	// File names the configuration document.
	File string `json:"file"`

	// Issues lists each violated rule message.
	Issues []string `json:"issues"`
}

// Error implements the error interface.
func (e *SemanticValidationError) Error() string {
	return fmt.Sprintf("%s has %d issues:\n%s", e.File, len(e.Issues), strings.Join(e.Issues, "\n"))
}

// Len returns the number of issues.
func (e *SemanticValidationError) Len() int {
	return len(e.Issues)
}
