package schema

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Kind names of generic values, used in violation messages.
const (
	KindNull    = "null"
	KindBoolean = "boolean"
	KindNumber  = "number"
	KindString  = "string"
	KindArray   = "array"
	KindObject  = "object"
)

// Descriptor describes how to validate and decode one schema position.
type Descriptor interface {
	// Describe names the expected value (e.g. "non-empty string", "enum BudgetType").
	Describe() string

	// Validate checks value and returns its typed form, or the violations found.
	// The typed value is meaningless when violations are returned.
	Validate(path string, value any) (any, Violations)
}

// KindOf returns the generic kind name of a decoded value.
func KindOf(value any) string {
	switch value.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any, Object:
		return KindObject
	}
	if _, ok := toFloat64(value); ok {
		return KindNumber
	}
	return fmt.Sprintf("%T", value)
}

// BooleanType accepts true or false.
type BooleanType struct{}

// Boolean returns the boolean descriptor.
func Boolean() *BooleanType { return &BooleanType{} }

// Describe implements Descriptor.
func (*BooleanType) Describe() string { return KindBoolean }

// Validate implements Descriptor.
func (d *BooleanType) Validate(path string, value any) (any, Violations) {
	b, ok := value.(bool)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	return b, nil
}

// NumberType accepts any finite integer or floating point value and yields
// a float64.
type NumberType struct{}

// Number returns the number descriptor.
func Number() *NumberType { return &NumberType{} }

// Describe implements Descriptor.
func (*NumberType) Describe() string { return KindNumber }

// Validate implements Descriptor.
func (d *NumberType) Validate(path string, value any) (any, Violations) {
	f, ok := toFloat64(value)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, Violations{newValueViolation(path, d.Describe(), f)}
	}
	return f, nil
}

// Integer bounds. Every integer in this range is exact as a float64.
const (
	MaxInteger = 1<<53 - 1
	MinInteger = -MaxInteger
)

// IntegerType accepts integral numbers within [lo, hi] and yields an int.
type IntegerType struct {
	lo, hi int
}

// Integer returns a descriptor accepting any integer in
// [MinInteger, MaxInteger].
func Integer() *IntegerType { return &IntegerType{lo: MinInteger, hi: MaxInteger} }

// IntegerRange returns a descriptor accepting integers in [lo, hi].
func IntegerRange(lo, hi int) *IntegerType { return &IntegerType{lo: lo, hi: hi} }

// Bounds returns the accepted range.
func (d *IntegerType) Bounds() (lo, hi int) { return d.lo, d.hi }

// Describe implements Descriptor.
func (d *IntegerType) Describe() string {
	if d.lo == MinInteger && d.hi == MaxInteger {
		return "integer"
	}
	return fmt.Sprintf("integer in [%d, %d]", d.lo, d.hi)
}

// Validate implements Descriptor.
func (d *IntegerType) Validate(path string, value any) (any, Violations) {
	f, ok := toFloat64(value)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < float64(d.lo) || f > float64(d.hi) {
		return nil, Violations{newValueViolation(path, d.Describe(), f)}
	}
	return int(f), nil
}

// StringType accepts strings, optionally rejecting the empty string.
type StringType struct {
	nonEmpty bool
}

// String returns the string descriptor.
func String() *StringType { return &StringType{} }

// NonEmptyString returns a string descriptor that rejects "".
func NonEmptyString() *StringType { return &StringType{nonEmpty: true} }

// NonEmpty reports whether the empty string is rejected.
func (d *StringType) NonEmpty() bool { return d.nonEmpty }

// Describe implements Descriptor.
func (d *StringType) Describe() string {
	if d.nonEmpty {
		return "non-empty string"
	}
	return KindString
}

// Validate implements Descriptor.
func (d *StringType) Validate(path string, value any) (any, Violations) {
	s, ok := value.(string)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	if d.nonEmpty && s == "" {
		return nil, Violations{{
			Path:     path,
			Message:  "expected non-empty string, got empty string",
			Expected: d.Describe(),
			Actual:   KindString,
		}}
	}
	return s, nil
}

// RegionType accepts a region identifier from the supported catalogue.
type RegionType struct{}

// Region returns the region descriptor.
func Region() *RegionType { return &RegionType{} }

// Describe implements Descriptor.
func (*RegionType) Describe() string { return "region" }

// Validate implements Descriptor.
func (d *RegionType) Validate(path string, value any) (any, Violations) {
	s, ok := value.(string)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	if !IsRegion(s) {
		return nil, Violations{{
			Path:     path,
			Message:  fmt.Sprintf("%q is not a supported region", s),
			Expected: d.Describe(),
			Actual:   KindString,
		}}
	}
	return s, nil
}

// EnumType accepts a string from a named set of allowed values.
type EnumType struct {
	name   string
	values []string
}

// Enum returns a descriptor accepting only the given values.
func Enum(name string, values ...string) *EnumType {
	return &EnumType{name: name, values: slices.Clone(values)}
}

// Name returns the enum name.
func (d *EnumType) Name() string { return d.name }

// Values returns a copy of the allowed values in declaration order.
func (d *EnumType) Values() []string { return slices.Clone(d.values) }

// Contains reports whether s is an allowed value.
func (d *EnumType) Contains(s string) bool { return slices.Contains(d.values, s) }

// Describe implements Descriptor.
func (d *EnumType) Describe() string { return "enum " + d.name }

// Validate implements Descriptor.
func (d *EnumType) Validate(path string, value any) (any, Violations) {
	s, ok := value.(string)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}
	if !d.Contains(s) {
		return nil, Violations{{
			Path:     path,
			Message:  fmt.Sprintf("value %q is not a valid %s; allowed values: %s", s, d.name, strings.Join(d.values, ", ")),
			Expected: d.Describe(),
			Actual:   KindString,
		}}
	}
	return s, nil
}

// OptionalType accepts an absent or null value and otherwise delegates.
type OptionalType struct {
	inner Descriptor
}

// Optional marks a descriptor as not required.
func Optional(inner Descriptor) *OptionalType {
	return &OptionalType{inner: inner}
}

// Inner returns the wrapped descriptor.
func (d *OptionalType) Inner() Descriptor { return d.inner }

// Describe implements Descriptor.
func (d *OptionalType) Describe() string { return "optional " + d.inner.Describe() }

// Validate implements Descriptor.
func (d *OptionalType) Validate(path string, value any) (any, Violations) {
	if value == nil {
		return nil, nil
	}
	return d.inner.Validate(path, value)
}

// ArrayType accepts a list whose elements all match one descriptor.
type ArrayType struct {
	elem Descriptor
}

// Array returns a list descriptor.
func Array(elem Descriptor) *ArrayType {
	return &ArrayType{elem: elem}
}

// Elem returns the element descriptor.
func (d *ArrayType) Elem() Descriptor { return d.elem }

// Describe implements Descriptor.
func (d *ArrayType) Describe() string { return "array of " + d.elem.Describe() }

// Validate implements Descriptor. Every element is checked; violations are
// reported per index.
func (d *ArrayType) Validate(path string, value any) (any, Violations) {
	list, ok := value.([]any)
	if !ok {
		return nil, Violations{newTypeViolation(path, d.Describe(), value)}
	}

	var errs Violations
	out := make([]any, len(list))
	for i, item := range list {
		typed, vs := d.elem.Validate(fmt.Sprintf("%s[%d]", path, i), item)
		if len(vs) > 0 {
			errs.merge(vs)
			continue
		}
		out[i] = typed
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Field is one declared member of an Interface.
type Field struct {
	Name       string
	Descriptor Descriptor
}

// F declares an interface field.
func F(name string, d Descriptor) Field {
	return Field{Name: name, Descriptor: d}
}

// Required reports whether the field must be present.
func (f Field) Required() bool {
	_, optional := f.Descriptor.(*OptionalType)
	return !optional
}

// InterfaceType accepts a mapping with an ordered set of declared fields.
type InterfaceType struct {
	name   string
	fields []Field
	index  map[string]int
}

// Interface returns a mapping descriptor. It panics if a field name is
// declared twice or a field has no descriptor.
func Interface(name string, fields ...Field) *InterfaceType {
	d := &InterfaceType{
		name:   name,
		fields: slices.Clone(fields),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range d.fields {
		if f.Descriptor == nil {
			panic(fmt.Sprintf("schema: field %q of %s has no descriptor", f.Name, name))
		}
		if _, dup := d.index[f.Name]; dup {
			panic(fmt.Sprintf("schema: field %q declared twice in %s", f.Name, name))
		}
		d.index[f.Name] = i
	}
	return d
}

// Name returns the interface name.
func (d *InterfaceType) Name() string { return d.name }

// Fields returns a copy of the declared fields in order.
func (d *InterfaceType) Fields() []Field { return slices.Clone(d.fields) }

// Field looks up a declared field by name.
func (d *InterfaceType) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

// Describe implements Descriptor.
func (d *InterfaceType) Describe() string { return d.name }

// Validate implements Descriptor. Unknown keys are ignored; the typed
// result only holds declared keys that were present and non-null.
func (d *InterfaceType) Validate(path string, value any) (any, Violations) {
	m, ok := asMap(value)
	if !ok {
		return nil, Violations{newTypeViolation(path, "object "+d.name, value)}
	}

	var errs Violations
	out := make(Object, len(d.fields))
	for _, f := range d.fields {
		fieldPath := joinPath(path, f.Name)
		raw, present := m[f.Name]
		if !present || raw == nil {
			if f.Required() {
				errs.add(newRequiredViolation(fieldPath, f.Name, d.name))
			}
			continue
		}

		typed, vs := f.Descriptor.Validate(fieldPath, raw)
		if len(vs) > 0 {
			errs.merge(vs)
			continue
		}
		out[f.Name] = typed
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case Object:
		return m, true
	}
	return nil, false
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func toFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
