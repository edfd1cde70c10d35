package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeError reports a JSON value of the wrong type as a field error. Any
// other decode failure, such as a syntax error, yields nil.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}

	verr := NewValidationError()
	if typeErr.Type != nil && typeErr.Type.Kind() == reflect.String {
		verr.Add(typeErr.Field, fmt.Sprintf("The %s field must be a string.", typeErr.Field))
	} else {
		verr.Add(typeErr.Field, fmt.Sprintf("The %s field is invalid.", typeErr.Field))
	}
	return verr
}

func validateStruct(s interface{}) error {
	verr := NewValidationError()
	collect(verr, "", validate.Struct(s))
	return verr.OrNil()
}

// checkVar validates a single value and records failures under field.
func checkVar(verr *ValidationError, field string, value interface{}, tag string) {
	collect(verr, field, validate.Var(value, tag))
}

func collect(verr *ValidationError, field string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add(field, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		verr.Add(name, message(name, fe))
	}
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
