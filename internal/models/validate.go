package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/medicare-api/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct's validate tags and reports the first failure as a
// validation error naming the field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("invalid %T", v)
	}
	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", field)
	case "oneof":
		return apperr.Validation("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), "'", ""))
	case "gte", "lte", "gt":
		return apperr.Validation("%s is out of range (%s %s)", field, fe.Tag(), fe.Param())
	default:
		return apperr.Validation("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
