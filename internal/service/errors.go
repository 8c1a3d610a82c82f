package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"newsroom/internal/models"
)

// ValidationError reports rejected input field by field. It matches
// models.ErrValidation under errors.Is.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return models.ErrValidation
}

// fieldError builds a ValidationError for a single field.
func fieldError(field, msg string) error {
	return &ValidationError{Fields: validation.Errors{field: errors.New(msg)}}
}

// asValidationError converts the result of an ozzo-validation call.
// Internal rule errors are passed through unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		if len(fields) == 0 {
			return nil
		}
		return &ValidationError{Fields: fields}
	}
	return err
}
