package command

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// validate is shared by all commands; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name so errors match request payloads.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "halfstep", func(fl validator.FieldLevel) bool {
		return profile.IsHalfStep(fl.Field().Float())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("command: register %q validation: %v", tag, err))
	}
}

// validateStruct runs the struct tags of cmd and converts the first failure
// into a *shared.ValidationError.
func validateStruct(cmd interface{}) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.NewValidationError(fe.Field(), reason(fe))
	}
	return shared.NewValidationError("command", err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nonblank":
		return "must not be empty"
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "halfstep":
		return "must be a multiple of 0.5"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
