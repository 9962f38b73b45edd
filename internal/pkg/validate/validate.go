// Package validate wraps go-playground/validator with human-readable
// messages. The same instance backs echo's c.Validate and service-level
// input checks.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// Validator satisfies the echo.Validator interface.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator ready to be assigned to echo.Echo.Validator.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Validate checks struct tags. Failures are returned as a
// *domain.ValidationError listing every offending field.
func (ev *Validator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
				fields = append(fields, fe.Field())
			}
			return &domain.ValidationError{Fields: fields, Msg: strings.Join(msgs, "; ")}
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
