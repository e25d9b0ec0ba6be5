package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"campus-ride/internal/shared/apperrors"
)

var genders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
	"Any":    true,
}

// Validator checks request DTOs against their `validate` tags.
type Validator struct {
	v     *validator.Validate
	email *regexp.Regexp
}

// New registers the custom rules. emailPattern restricts the
// institutional_email rule; empty accepts any address.
func New(emailPattern string) (*Validator, error) {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled())}

	if emailPattern != "" {
		re, err := regexp.Compile(emailPattern)
		if err != nil {
			return nil, fmt.Errorf("compile email pattern: %w", err)
		}
		val.email = re
	}

	// Report json names instead of Go field names.
	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := val.v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return IsGender(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	if err := val.v.RegisterValidation("institutional_email", func(fl validator.FieldLevel) bool {
		return val.InstitutionalEmail(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	return val, nil
}

// Struct validates s. Failures wrap apperrors.ErrInvalidInput.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+": "+message(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

// InstitutionalEmail reports whether email matches the configured pattern.
func (val *Validator) InstitutionalEmail(email string) bool {
	if val.email == nil {
		return true
	}
	return val.email.MatchString(strings.TrimSpace(email))
}

func IsGender(s string) bool {
	return genders[s]
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid UUID format", apperrors.ErrInvalidInput)
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "institutional_email":
		return "must be an institutional email address"
	case "gender":
		return "must be one of Male, Female, Other, Any"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "invalid value"
	}
}
