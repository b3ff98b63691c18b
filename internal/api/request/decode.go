package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidBody is returned when the body is not valid JSON
var ErrInvalidBody = errors.New("invalid request body")

// Decode reads a JSON body into dst and validates its struct tags.
// Validation failures are returned as a single readable message.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidBody
	}
	return Validate(dst)
}

// Validate checks the struct tags of v
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return errors.New(FormatValidationError(err))
	}
	return nil
}

// FormatValidationError joins per-field messages
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldErrorMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s must be letters and digits only", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, toSnake(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// toSnake maps a Go field name onto its JSON spelling (DisplayName -> display_name)
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
