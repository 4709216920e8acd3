// Package validate defines the request schemas for the API. Every schema is
// a pure check: it either accepts the input or returns a *ValidationError
// listing all offending fields, and never mutates state on the way.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	// Report issues under the wire name, not the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldIssue describes a single rejected field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every issue found in one request. It is always
// returned whole; a request is never partially applied.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func issueError(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// Issue builds a single-field ValidationError. It exists for rules that can
// only be checked outside the schemas, such as the merged-window rule on
// partial updates.
func Issue(field, message string) *ValidationError {
	return issueError(field, message)
}

// check runs the tag-driven rules on value and translates the outcome.
func check(value any) *ValidationError {
	err := engine.Struct(value)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return issueError("", "invalid request")
	}
	issues := make([]FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, FieldIssue{Field: fe.Field(), Message: issueMessage(fe)})
	}
	return &ValidationError{Issues: issues}
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "must be an RFC 3339 timestamp"
	default:
		return "is invalid"
	}
}
