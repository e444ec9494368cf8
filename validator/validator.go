package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator checks configuration and payload structs. Fields are reported by
// their env variable name when tagged, by their JSON name otherwise.
type Validator struct {
	validate *validator.Validate
}

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}

	return strings.Join(msgs, "; ")
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(fieldName)

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()

			return f
		}

		return nil
	}, decimal.Decimal{})

	return &Validator{validate: v}
}

func fieldName(fld reflect.StructField) string {
	const maxSplits = 2

	for _, key := range []string{"env", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", maxSplits)[0]

		switch name {
		case "":
			continue
		case "-":
			return ""
		default:
			return name
		}
	}

	return fld.Name
}

func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return toFieldErrors(validationErrs)
	}

	return fmt.Errorf("validate %T: %w", i, err)
}

func toFieldErrors(errs validator.ValidationErrors) FieldErrors {
	fieldErrs := make(FieldErrors, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		if field == "" {
			field = err.StructField()
		}

		fieldErrs = append(fieldErrs, FieldError{
			Field:   field,
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
			Message: message(field, err),
		})
	}

	return fieldErrs
}

func message(field string, err validator.FieldError) string {
	param := err.Param()

	switch err.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, param)
	case "email":
		return field + " must be a valid email address"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	default:
		return fmt.Sprintf("%s failed validation on '%s'", field, err.Tag())
	}
}
