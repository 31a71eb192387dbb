// Package validation builds the request validator shared by all handlers.
package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// DefaultPincodePattern matches six-digit Indian pincodes.
const DefaultPincodePattern = `^\d{6}$`

// New returns a validator with the custom "pincode" tag bound to pattern.
func New(pattern string) (*validator.Validate, error) {
	if pattern == "" {
		pattern = DefaultPincodePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("validation: pincode pattern: %w", err)
	}

	v := validator.New()
	if err := v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("validation: register pincode: %w", err)
	}
	return v, nil
}

// MustNew is New for patterns known to compile.
func MustNew(pattern string) *validator.Validate {
	v, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return v
}
