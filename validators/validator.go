package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/anonto42/weabotalk/backend/pkg/sanitize"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validator wraps go-playground/validator and satisfies echo.Validator.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a Validator with json field names and the app's custom tags.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		return models.IsAllowedReaction(fl.Field().String())
	})
	_ = v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
		return !sanitize.HasMarkup(fl.Field().String())
	})

	return &Validator{validator: v}
}

// Validate checks i and returns an *apperror.Error listing every failing field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Invalid("request", "Request could not be validated")
	}

	fields := make([]apperror.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return apperror.Validation(fields...)
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, param)
	case "username":
		return fmt.Sprintf("%s can only contain letters, numbers, and underscores", field)
	case "reaction":
		return fmt.Sprintf("%s is not an allowed reaction", field)
	case "plaintext":
		return fmt.Sprintf("%s must not contain HTML markup", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
