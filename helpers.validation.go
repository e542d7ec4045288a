package main

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InputValidator checks user payloads and converts failures into *ValidationError.
type InputValidator struct {
	v *validator.Validate
}

// NewInputValidator returns a validator reporting fields by their json name.
func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &InputValidator{v: v}
}

// Validate returns the first failing field as a *ValidationError.
func (iv *InputValidator) Validate(s interface{}) error {
	err := iv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Reason: friendlyReason(fe)}
}

func friendlyReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	}
	return "is invalid"
}
