package application

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-persona/internal/domain"
)

// RegisterDomainValidators registers custom validation functions with
// the validator instance for use in catalog and submission validation.
// RegisterDomainValidators adds dimension and typecode validators
// that can be referenced in struct tags for automated validation.
// RegisterDomainValidators returns an error if any validator registration
// fails.
func RegisterDomainValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("dimension", validateDimensionTag); err != nil {
		return fmt.Errorf("failed to register dimension validator: %w", err)
	}
	if err := v.RegisterValidation("typecode", validateTypeCodeTag); err != nil {
		return fmt.Errorf("failed to register typecode validator: %w", err)
	}
	return nil
}

// newValidator builds a validator with the domain tags registered.
func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterDomainValidators(v); err != nil {
		return nil, err
	}
	return v, nil
}

// validateDimensionTag accepts the four canonical dimension tags.
func validateDimensionTag(fl validator.FieldLevel) bool {
	return domain.Dimension(fl.Field().String()).Valid()
}

// validateTypeCodeTag accepts four-letter type codes with one letter from
// each pair, in pair order.
func validateTypeCodeTag(fl validator.FieldLevel) bool {
	return domain.ValidTypeCode(fl.Field().String())
}

// toValidationError converts validator output into a domain.ValidationError
// for entity. Errors that are not field validation failures are wrapped
// unchanged.
func toValidationError(entity string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	verr := domain.NewValidationError(entity)
	for _, fe := range fieldErrs {
		verr.AddError(describeFieldError(fe))
	}
	return verr
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "dimension":
		return fmt.Sprintf("%s: %q is not one of EI, SN, TF, JP", fe.Namespace(), fe.Value())
	case "typecode":
		return fmt.Sprintf("%s: %q is not a four-letter type code", fe.Namespace(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Namespace(), fe.Param())
	}
	return fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag())
}
