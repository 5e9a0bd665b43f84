// Package validation checks typed request DTOs and reports every violated
// rule as a FieldError, in struct declaration order.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/project-tracker-api/internal/constants"
)

// FieldError describes one violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationErrors is the structured result of a failed validation.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Message
}

// First returns the message of the first violated rule.
func (e ValidationErrors) First() string {
	return e.Error()
}

// Validator wraps go-playground/validator with the project's custom rules
// and message formatting.
type Validator struct {
	validate *validator.Validate
}

var defaultValidator = New()

// New returns a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("password", validatePassword)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	return &Validator{validate: v}
}

// Validate checks s and returns ValidationErrors when any rule fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// Validate validates s with the package-level validator.
func Validate(s interface{}) error {
	return defaultValidator.Validate(s)
}

func message(fe validator.FieldError) string {
	field := fmt.Sprintf("%q", fe.Field())

	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "notblank":
		return field + " is not allowed to be empty"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "password":
		value, _ := fe.Value().(string)
		return passwordMessage(field, value)
	case "excluded_with", "isdefault":
		return field + " is not allowed"
	default:
		return fmt.Sprintf("%s failed on the %q rule", field, fe.Tag())
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// passwordClasses counts the character classes present in s.
type passwordClasses struct {
	lower, upper, digit, symbol int
}

func classify(s string) passwordClasses {
	var pc passwordClasses
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			pc.lower++
		case unicode.IsUpper(r):
			pc.upper++
		case unicode.IsDigit(r):
			pc.digit++
		default:
			pc.symbol++
		}
	}
	return pc
}

func validatePassword(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return passwordMessage("", field.String()) == ""
}

// passwordMessage returns the first complexity rule s violates, or "" when
// the password is acceptable.
func passwordMessage(field, s string) string {
	n := len([]rune(s))
	if n < constants.MinPasswordLength {
		return fmt.Sprintf("Password should be at least %d characters long", constants.MinPasswordLength)
	}
	if n > constants.MaxPasswordLength {
		return fmt.Sprintf("%s should not be longer than %d characters", field, constants.MaxPasswordLength)
	}

	pc := classify(s)
	switch {
	case pc.lower == 0:
		return field + " should contain at least 1 lower-cased letter"
	case pc.upper == 0:
		return field + " should contain at least 1 upper-cased letter"
	case pc.digit == 0:
		return field + " should contain at least 1 number"
	case pc.symbol == 0:
		return field + " should contain at least 1 symbol"
	}
	return ""
}
