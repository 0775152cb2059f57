// Package models defines data structures and domain types.
package models

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared by every model; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	return validate.Struct(v)
}

