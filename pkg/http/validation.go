package http

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names, which is what the form sent.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})
	return v
}

// ValidationError is one rejected form field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationErrors collects the rejected fields of one form
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return ve.Errors[0].Message
}

func (ve *ValidationErrors) AddError(field, message, code string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message, Code: code})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields returns the first message per field, the shape RespondWithValidationErrors sends
func (ve *ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(ve.Errors))
	for _, e := range ve.Errors {
		if _, seen := fields[e.Field]; !seen {
			fields[e.Field] = e.Message
		}
	}
	return fields
}

// SanitizeString trims whitespace and drops control characters other than
// line breaks and tabs
func SanitizeString(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
}

// messages builds the field message for each validator tag
var messages = map[string]func(field, param string) string{
	"required": func(f, _ string) string { return f + " is required" },
	"email":    func(f, _ string) string { return f + " must be a valid email address" },
	"min":      func(f, p string) string { return f + " must be at least " + p + " characters" },
	"max":      func(f, p string) string { return f + " must be at most " + p + " characters" },
	"gte":      func(f, p string) string { return f + " must be greater than or equal to " + p },
	"ne":       func(f, p string) string { return f + " must not be " + p },
	"oneof":    func(f, p string) string { return f + " must be one of: " + strings.ReplaceAll(p, " ", ", ") },
	"hexcolor": func(f, _ string) string { return f + " must be a hex color such as #112233" },
	"url":      func(f, _ string) string { return f + " must be a valid URL" },
}

func fieldMessage(fe validator.FieldError) string {
	if format, ok := messages[fe.Tag()]; ok {
		return format(fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// ValidateStruct checks s against its `validate` tags
func ValidateStruct(s interface{}) *ValidationErrors {
	result := &ValidationErrors{}
	err := validate.Struct(s)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.AddError("request", "Invalid request", "invalid")
		return result
	}
	for _, fe := range fieldErrors {
		result.AddError(fe.Field(), fieldMessage(fe), fe.Tag())
	}
	return result
}

// BindAndValidate binds a JSON form, sanitizes its string fields and validates it
func BindAndValidate(c *gin.Context, form interface{}) *ValidationErrors {
	if err := c.ShouldBindJSON(form); err != nil {
		result := &ValidationErrors{}
		result.AddError("request", "Invalid JSON format", "invalid_json")
		return result
	}
	sanitizeFields(reflect.ValueOf(form))
	return ValidateStruct(form)
}

func sanitizeFields(v reflect.Value) {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := range v.NumField() {
		field := v.Field(i)
		switch {
		case !field.CanSet():
		case field.Kind() == reflect.String:
			field.SetString(SanitizeString(field.String()))
		case field.Kind() == reflect.Ptr && field.Elem().Kind() == reflect.String:
			field.Elem().SetString(SanitizeString(field.Elem().String()))
		}
	}
}
