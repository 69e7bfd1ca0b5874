package serrors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error that can be matched with errors.As and rendered
// to API consumers without leaking internals.
type BaseError struct {
	Code    string
	Message string
	Details string
}

func (e *BaseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, details string) *BaseError {
	return &BaseError{Code: code, Message: message, Details: details}
}

// WithDetails returns a copy carrying extra context. The code stays stable so
// errors.Is against the sentinel still matches.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{Code: e.Code, Message: e.Message, Details: details}
}

func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

type ValidationErrors map[string]string

// ProcessValidatorErrors flattens validator.ValidationErrors into a
// field -> message map suitable for API responses.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fieldErr := range errs {
		out[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}
	return out
}
