package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/liveview/errors"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checker collects field errors.
type Checker struct {
	errors []FieldError
}

// New creates an empty Checker.
func New() *Checker {
	return &Checker{}
}

// AddError records a failure of field.
func (c *Checker) AddError(field, message string) {
	c.errors = append(c.errors, FieldError{Field: field, Message: message})
}

// Errors returns every recorded failure.
func (c *Checker) Errors() []FieldError {
	return c.errors
}

// Validate returns nil when nothing failed, otherwise an INVALID_INPUT
// AppError listing the failures.
func (c *Checker) Validate() *errors.AppError {
	if len(c.errors) == 0 {
		return nil
	}
	messages := make([]string, len(c.errors))
	for i, e := range c.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", c.errors)
}

// Required fails field when value is blank.
func (c *Checker) Required(field, value string) *Checker {
	if strings.TrimSpace(value) == "" {
		c.AddError(field, "is required")
	}
	return c
}

// MaxLength fails field when value is longer than n runes.
func (c *Checker) MaxLength(field, value string, n int) *Checker {
	if len([]rune(value)) > n {
		c.AddError(field, fmt.Sprintf("must be at most %d characters", n))
	}
	return c
}

// UUID fails field when value is set and is not a UUID.
func (c *Checker) UUID(field, value string) *Checker {
	if value == "" {
		return c
	}
	if _, err := uuid.Parse(value); err != nil {
		c.AddError(field, "must be a valid UUID")
	}
	return c
}

// Custom fails field with message when ok is false.
func (c *Checker) Custom(ok bool, field, message string) *Checker {
	if !ok {
		c.AddError(field, message)
	}
	return c
}
