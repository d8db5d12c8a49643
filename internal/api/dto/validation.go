package dto

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// Validatable is implemented by every request payload.
type Validatable interface {
	Validate() error
}

// Validate runs the payload rules and converts field errors into a
// VALIDATION_FAILED DomainError with one detail per field.
func Validate(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
