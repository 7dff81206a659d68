package shared

import (
	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}
