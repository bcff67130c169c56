package schema

import "fmt"

// Parse validates value against d and returns the typed value.
//
// The whole tree is walked before returning; every violation found is
// reported in one *SchemaValidationError. Parse performs no defaulting.
func Parse(d Descriptor, value any) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("schema: nil descriptor")
	}

	typed, vs := d.Validate("", value)
	if err := NewSchemaValidationError(d.Describe(), vs); err != nil {
		return nil, err
	}
	return typed, nil
}

// ParseObject is Parse for Interface descriptors.
func ParseObject(d *InterfaceType, value any) (Object, error) {
	typed, err := Parse(d, value)
	if err != nil {
		return nil, err
	}
	obj, ok := typed.(Object)
	if !ok {
		return nil, fmt.Errorf("schema: %s produced %T, not an object", d.Name(), typed)
	}
	return obj, nil
}
