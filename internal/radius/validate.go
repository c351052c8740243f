package radius

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// forbiddenNameChars may not appear in user or group names.
const forbiddenNameChars = "\"';,=><!@#$%^&*() \t"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("radiusname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	})

	_ = v.RegisterValidation("notplaceholder", func(fl validator.FieldLevel) bool {
		return !IsPlaceholder(fl.Field().String())
	})

	_ = v.RegisterValidation("radiusop", func(fl validator.FieldLevel) bool {
		return Operator(fl.Field().String()).Valid()
	})

	return v
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value,omitempty"`
}

func (f FieldError) String() string {
	switch f.Tag {
	case "required":
		return f.Field + " is required"
	case "radiusname":
		return f.Field + " contains invalid characters"
	case "notplaceholder":
		return f.Field + " must not start with " + PlaceholderPrefix
	case "radiusop":
		return fmt.Sprintf("%s %v is not a valid operator", f.Field, f.Value)
	case "max":
		return f.Field + " is too long"
	default:
		return fmt.Sprintf("%s failed %s validation", f.Field, f.Tag)
	}
}

// ValidationError is returned before any database call when input is rejected.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}

	return "validation failed: " + strings.Join(msgs, ", ")
}

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(errs))}
	for _, e := range errs {
		out.Fields = append(out.Fields, FieldError{Field: e.Field(), Tag: e.Tag(), Value: e.Value()})
	}

	return out
}

// ValidName reports whether s is usable as a user or group name: 1..64
// characters, none of forbiddenNameChars and no control characters.
func ValidName(s string) bool {
	if s == "" || len([]rune(s)) > MaxNameLength {
		return false
	}

	for _, r := range s {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenNameChars, r) {
			return false
		}
	}

	return true
}

// ValidateUser checks u before creation.
func ValidateUser(u User) error {
	return Validate(u)
}

// ValidateAttribute checks a single attribute.
func ValidateAttribute(a Attribute) error {
	return Validate(a)
}

// ValidateGroup checks g before creation.
func ValidateGroup(g Group) error {
	return Validate(g)
}
