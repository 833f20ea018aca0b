package inventory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return validationf("%v", err)
	}
	f := ve[0]
	field := f.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch f.Tag() {
	case "required":
		return validationf("%s is required", field)
	case "min":
		if f.Kind() == reflect.Slice {
			return validationf("%s must contain at least %s entry", field, f.Param())
		}
		return validationf("%s must be at least %s", field, f.Param())
	default:
		return validationf("%s is invalid", field)
	}
}
