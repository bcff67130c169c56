package schema

import (
	"fmt"
	"strings"
)

// Violation is a single structural failure found while parsing.
type Violation struct {
	// Path is the dotted path to the offending value (e.g. "logging.cloudtrail.enable").
	Path string `json:"path"`

	// Message describes what is wrong.
	Message string `json:"message"`

	// Expected describes the descriptor that rejected the value.
	Expected string `json:"expected,omitempty"`

	// Actual is the kind of the value that was found.
	Actual string `json:"actual,omitempty"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Violations is an ordered list of violations collected during one walk.
type Violations []Violation

// add appends a violation.
func (vs *Violations) add(v Violation) {
	*vs = append(*vs, v)
}

// merge appends all violations from other.
func (vs *Violations) merge(other Violations) {
	*vs = append(*vs, other...)
}

// UnderPath returns the violations at path or below it.
func (vs Violations) UnderPath(path string) Violations {
	var result Violations
	for _, v := range vs {
		if v.Path == path || strings.HasPrefix(v.Path, path+".") || strings.HasPrefix(v.Path, path+"[") {
			result = append(result, v)
		}
	}
	return result
}

// SchemaValidationError aggregates every structural violation found by Parse.
type SchemaValidationError struct {
	// Schema is the name of the root descriptor.
	Schema string

	// Violations lists every failure in walk order.
	Violations Violations
}

// Error implements the error interface.
func (e *SchemaValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Violations[0].Error()
	}

	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Violations), strings.Join(msgs, "\n  - "))
}

// Len returns the number of violations.
func (e *SchemaValidationError) Len() int {
	return len(e.Violations)
}

// NewSchemaValidationError returns nil when there are no violations.
func NewSchemaValidationError(schemaName string, vs Violations) error {
	if len(vs) == 0 {
		return nil
	}
	return &SchemaValidationError{Schema: schemaName, Violations: vs}
}

func newTypeViolation(path, expected string, actual any) Violation {
	kind := KindOf(actual)
	return Violation{
		Path:     path,
		Message:  fmt.Sprintf("expected %s, got %s", expected, kind),
		Expected: expected,
		Actual:   kind,
	}
}

func newValueViolation(path, expected string, actual float64) Violation {
	return Violation{
		Path:     path,
		Message:  fmt.Sprintf("expected %s, got %v", expected, actual),
		Expected: expected,
		Actual:   KindNumber,
	}
}

func newRequiredViolation(path, field, iface string) Violation {
	return Violation{
		Path:     path,
		Message:  fmt.Sprintf("required field %q is missing from %s", field, iface),
		Expected: "required field",
		Actual:   KindNull,
	}
}
