package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// NaN and ±Inf cannot be encoded as JSON
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
			return true
		}
		return isFinite(field.Float())
	})
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// InputError reports every invalid field of a request. It matches
// ErrValidation under errors.Is and its message is the first field's.
type InputError struct {
	Message string
	Fields  map[string]string
}

func (e *InputError) Error() string {
	return ErrValidation.Error() + ": " + e.Message
}

func (e *InputError) Unwrap() error {
	return ErrValidation
}

// validateInput runs struct tag validation and collects the failing fields
// into an InputError.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	inputErr := &InputError{Fields: make(map[string]string, len(fieldErrs))}
	for i, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		msg := fieldMessage(field, fe)
		if _, seen := inputErr.Fields[field]; !seen {
			inputErr.Fields[field] = msg
		}
		if i == 0 {
			inputErr.Message = msg
		}
	}
	return inputErr
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// checkPrice applies the ProductInput price rules to an update.
func checkPrice(price float64) error {
	if !isFinite(price) {
		return validationError("price must be a finite number")
	}
	if price < 0 {
		return validationError("price must not be negative")
	}
	return nil
}
