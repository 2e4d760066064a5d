package utils

import (
	"fmt"
	"strings"

	"github.com/toyz/contractscan/internal/errors"
)

// Validator checks one value and returns a configuration error on failure
type Validator[T any] func(T) error

// NotEmpty validates that a string is not blank
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.ConfigurationError(field, "cannot be empty")
		}
		return nil
	}
}

// AtLeast validates that an integer is not below min
func AtLeast(field string, min int) Validator[int] {
	return func(value int) error {
		if value < min {
			return errors.ConfigurationError(field, fmt.Sprintf("must be at least %d, got %d", min, value))
		}
		return nil
	}
}

// NoneBlank validates that no element of a list is blank
func NoneBlank(field string) Validator[[]string] {
	return func(values []string) error {
		for i, value := range values {
			if strings.TrimSpace(value) == "" {
				return errors.ConfigurationError(field, fmt.Sprintf("entry %d is empty", i))
			}
		}
		return nil
	}
}
