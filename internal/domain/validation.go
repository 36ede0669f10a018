package domain

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator creates a configured validator instance
func NewValidator() *validator.Validate {
	return validator.New()
}
