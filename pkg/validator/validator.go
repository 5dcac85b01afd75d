package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator checks structs tagged with `validate` and reports field errors
// keyed by their JSON names.
type Validator interface {
	Validate(obj interface{}) map[string]string
}

type validatorImpl struct {
	v *validator.Validate
}

var (
	once     sync.Once
	instance *validatorImpl
)

// New returns the shared validator instance.
func New() Validator {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		instance = &validatorImpl{v: v}
	})
	return instance
}

// Validate returns nil when obj passes, otherwise one message per failing field.
func (vi *validatorImpl) Validate(obj interface{}) map[string]string {
	err := vi.v.Struct(obj)
	if err == nil {
		return nil
	}

	return FieldErrors(err)
}

// FieldErrors converts a validation error, including the ones gin returns
// from ShouldBind, into field messages. Other errors land under "_".
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe.Field())] = message(fe)
	}
	return fields
}

// jsonName lowercases Go field names reported by gin's validator; names
// already taken from json tags pass through.
func jsonName(field string) string {
	if field == "" || strings.ToLower(field[:1]) == field[:1] {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func message(fe validator.FieldError) string {
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
