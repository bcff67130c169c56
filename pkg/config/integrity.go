package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/openfroyo/lzconfig/pkg/schema"
)

var modelValidator = sync.OnceValue(newModelValidator)

func newModelValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their document names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return schema.IsRegion(fl.Field().String())
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := enumsByName[fl.Param()]
		return ok && e.Contains(fl.Field().String())
	})

	return v
}

// CheckModel validates the struct tags of a constructed model section,
// reporting failures as a *schema.SchemaValidationError. Parsed input has
// already passed the schema, so a failure here means a model was assembled
// in code with values the document could never carry.
func CheckModel(model any) error {
	err := modelValidator().Struct(model)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("check model: %w", err)
	}

	name := reflect.Indirect(reflect.ValueOf(model)).Type().Name()
	vs := make(schema.Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		vs = append(vs, modelViolation(fe))
	}
	return schema.NewSchemaValidationError(name, vs)
}

func modelViolation(fe validator.FieldError) schema.Violation {
	// Drop the root type name from the namespace.
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	value := fmt.Sprint(fe.Value())

	v := schema.Violation{Path: path, Actual: schema.KindOf(fe.Value())}
	switch fe.Tag() {
	case "required":
		v.Expected = "non-empty string"
		v.Message = "value must not be empty"
	case "region":
		v.Expected = "region"
		v.Message = fmt.Sprintf("%q is not a supported region", value)
	case "enum":
		v.Expected = "enum " + fe.Param()
		allowed := ""
		if e, ok := enumsByName[fe.Param()]; ok {
			allowed = strings.Join(e.Values(), ", ")
		}
		v.Message = fmt.Sprintf("value %q is not a valid %s; allowed values: %s", value, fe.Param(), allowed)
	default:
		v.Expected = fe.Tag()
		v.Message = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return v
}
