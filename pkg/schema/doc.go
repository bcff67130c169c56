// Package schema provides the declarative type descriptors used to describe
// the shape of a configuration document and the engine that checks an
// untyped value tree against them.
//
// # Overview
//
// A schema is a graph of immutable descriptors built bottom-up from a small
// set of combinators:
//
//   - Boolean, Number, String, NonEmptyString: scalar kinds (Number is finite)
//   - Integer, IntegerRange: integral numbers within bounds, decoded as int
//   - Region: a string drawn from the supported region catalogue
//   - Enum: a string drawn from a named set of allowed values
//   - Optional: accepts an absent or null value, otherwise delegates
//   - Array: a list whose elements all match one descriptor
//   - Interface: a named mapping with an ordered set of declared fields
//
// Descriptors hold no mutable state. A schema built once can be shared by
// any number of concurrent Parse calls.
//
// # Parsing
//
// Parse walks a generic value (the output of a YAML or JSON decoder:
// nil, bool, numbers, string, []any, map[string]any) against a descriptor
// and returns the typed value. Interfaces produce an Object holding only
// the declared keys; unknown keys in the input are ignored.
//
// Parse never stops at the first problem. Every violation found during the
// walk is collected into a single *SchemaValidationError:
//
//	value, err := schema.Parse(desc, generic)
//	if err != nil {
//	    var sve *schema.SchemaValidationError
//	    if errors.As(err, &sve) {
//	        for _, v := range sve.Violations {
//	            fmt.Println(v.Path, v.Message)
//	        }
//	    }
//	}
//
// Violations carry the dotted field path (logging.cloudtrail.enable,
// enabledRegions[2]), what was expected and the kind of the value found.
//
// # CUE export
//
// ExportCUE renders a descriptor graph as CUE definitions and ValidateCUE
// checks a generic value against that rendering. The export is used to
// publish the schema and to cross-check the descriptor engine.
package schema
