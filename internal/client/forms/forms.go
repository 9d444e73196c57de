// Package forms validates user input before it reaches the gateway.
// Failures are returned as validation gateway errors carrying one message
// per offending field, keyed by the field's JSON name.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/go-playground/validator/v10"
)

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Signup struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (Signup) messages() map[string]string {
	return map[string]string{
		"name.required":            "Please enter your name",
		"email.required":           "Please enter your email",
		"email.email":              "Please enter a valid email address",
		"password.required":        "Please enter a password",
		"password.min":             "Password must be at least 8 characters long",
		"confirmPassword.required": "Passwords do not match",
		"confirmPassword.eqfield":  "Passwords do not match",
	}
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

func (ForgotPassword) messages() map[string]string {
	return map[string]string{
		"email.required": "Please enter your email address",
		"email.email":    "Please enter a valid email address",
	}
}

type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (ResetPassword) messages() map[string]string {
	return map[string]string{
		"token.required":           "Invalid or expired password reset link",
		"password.required":        "Please enter a new password",
		"password.min":             "Password must be at least 6 characters long",
		"confirmPassword.required": "Passwords do not match",
		"confirmPassword.eqfield":  "Passwords do not match",
	}
}

// Favorite validates a country code before it is bookmarked.
type Favorite struct {
	CountryCode string `json:"countryCode" validate:"required,len=3,alpha"`
}

func (Favorite) messages() map[string]string {
	return map[string]string{
		"countryCode.required": "Country code is required",
		"countryCode.len":      "Country code must be 3 letters",
		"countryCode.alpha":    "Country code must be 3 letters",
	}
}

// Profile validates the editable profile fields.
type Profile models.ProfileUpdate

// messager lets a form override the generated message of a field/tag pair.
type messager interface {
	messages() map[string]string
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	return &Validator{validate: v}
}

// Validate checks form and returns nil or a *gateway.Error of kind
// validation. op names the operation for logging.
func (v *Validator) Validate(op string, form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", op, err)
	}

	var custom map[string]string
	if m, ok := form.(messager); ok {
		custom = m.messages()
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		if msg, ok := custom[name+"."+fe.Tag()]; ok {
			fields[name] = msg
			continue
		}
		fields[name] = message(fe)
	}
	return gateway.NewValidationError(op, fields)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", field)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("%s failed validation for %s", field, fe.Tag())
	}
}
