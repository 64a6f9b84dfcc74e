package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// Reason renders the failure as a human-readable sentence fragment.
func (e ValidationError) Reason() string {
	switch e.Tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param)
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param)
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s.", strings.ReplaceAll(e.Param, " ", ", "))
	default:
		if e.Param != "" {
			return fmt.Sprintf("Failed constraint %s=%s.", e.Tag, e.Param)
		}
		return fmt.Sprintf("Failed constraint %s.", e.Tag)
	}
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Field + ": " + err.Reason()
	}
	return strings.Join(parts, "; ")
}

// FieldMap groups failure reasons by field name, in the shape API error
// responses use.
func (v ValidationErrors) FieldMap() map[string][]string {
	if len(v) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(v))
	for _, err := range v {
		fields[err.Field] = append(fields[err.Field], err.Reason())
	}
	return fields
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "" {
				return fld.Name
			}

			comma := strings.Index(name, ",")
			if comma != -1 {
				name = name[:comma]
			}

			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
