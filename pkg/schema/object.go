package schema

import "math"

// Object is the typed result of an Interface descriptor: a mapping holding
// only the declared fields that were present in the input.
//
// The accessors report presence as their second return value, which lets
// callers overlay present fields onto defaults without reflection.
type Object map[string]any

// Has reports whether key was present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the string at key.
func (o Object) String(key string) (string, bool) {
	s, ok := o[key].(string)
	return s, ok
}

// Bool returns the boolean at key.
func (o Object) Bool(key string) (bool, bool) {
	b, ok := o[key].(bool)
	return b, ok
}

// Number returns the number at key.
func (o Object) Number(key string) (float64, bool) {
	return toFloat64(o[key])
}

// Int returns the integer at key. Non-integral, non-finite and
// out-of-range numbers are reported as absent.
func (o Object) Int(key string) (int, bool) {
	if n, ok := o[key].(int); ok {
		return n, true
	}
	f, ok := toFloat64(o[key])
	if !ok || math.IsNaN(f) || f != math.Trunc(f) || f < MinInteger || f > MaxInteger {
		return 0, false
	}
	return int(f), true
}

// Object returns the nested object at key.
func (o Object) Object(key string) (Object, bool) {
	switch v := o[key].(type) {
	case Object:
		return v, true
	case map[string]any:
		return Object(v), true
	}
	return nil, false
}

// List returns the list at key.
func (o Object) List(key string) ([]any, bool) {
	l, ok := o[key].([]any)
	return l, ok
}

// Strings returns the list at key as strings, skipping non-string items.
func (o Object) Strings(key string) ([]string, bool) {
	l, ok := o.List(key)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Objects returns the list at key as objects, skipping non-object items.
func (o Object) Objects(key string) ([]Object, bool) {
	l, ok := o.List(key)
	if !ok {
		return nil, false
	}
	out := make([]Object, 0, len(l))
	for _, item := range l {
		switch v := item.(type) {
		case Object:
			out = append(out, v)
		case map[string]any:
			out = append(out, Object(v))
		}
	}
	return out, true
}
